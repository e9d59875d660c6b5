package usage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackendMissingFile(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "usage_count.txt"))
	n, err := b.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 0 {
		t.Errorf("Load() = %d, want 0", n)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"whitespace", " \n\t", 0, false},
		{"plain", "42", 42, false},
		{"trailing newline", "7\n", 7, false},
		{"non-numeric", "abc", 0, true},
		{"negative", "-3", 0, true},
		{"float", "1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCounterPersistsIncrements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage_count.txt")

	c, err := Load(NewFileBackend(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := c.Increment(); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	if c.Count() != 3 {
		t.Errorf("Count() = %d, want 3", c.Count())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "3" {
		t.Errorf("file content = %q, want %q", data, "3")
	}

	// A fresh counter picks up where the previous one stopped.
	c2, err := Load(NewFileBackend(path))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n, _ := c2.Increment(); n != 4 {
		t.Errorf("Increment() after reload = %d, want 4", n)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage_count.txt")
	if err := os.WriteFile(path, []byte("lots"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(NewFileBackend(path)); err == nil {
		t.Fatal("expected error for non-numeric usage file")
	}
}

type failingBackend struct{}

func (failingBackend) Load() (int, error) { return 5, nil }
func (failingBackend) Save(int) error     { return errors.New("disk full") }

func TestIncrementSaveFailure(t *testing.T) {
	c, err := Load(failingBackend{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n, err := c.Increment()
	if err == nil {
		t.Fatal("expected save error")
	}
	if n != 6 {
		t.Errorf("Increment() = %d, want 6", n)
	}
}
