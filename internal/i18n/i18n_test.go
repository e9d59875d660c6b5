package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "Correct"); got != "✅ Correct!" {
		t.Errorf("T(Correct) = %q, want '✅ Correct!'", got)
	}
	if got := T(ctx, "QuizInterrupted"); got != "Quiz interrupted." {
		t.Errorf("T(QuizInterrupted) = %q, want 'Quiz interrupted.'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	if got := T(ctx, "Correct"); got != "✅ Верно!" {
		t.Errorf("T(Correct) = %q, want '✅ Верно!'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "Wrong", map[string]any{"Answer": "<a>"})
	if got != "❌ Wrong. Correct answer: <a>" {
		t.Errorf("Td(Wrong) = %q", got)
	}

	got = Td(ctx, "AnswerPrompt", map[string]any{"Max": 3})
	if got != "Your answer (0-3):" {
		t.Errorf("Td(AnswerPrompt) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestFallbackWithoutLocalizer(t *testing.T) {
	initLang(t, "en")

	if got := T(context.Background(), "NoQuestions"); got != "No questions generated." {
		t.Errorf("T(NoQuestions) without localizer = %q", got)
	}
}

func TestInitInvalidLanguage(t *testing.T) {
	if err := Init("not a language!"); err == nil {
		t.Error("expected error for invalid language tag")
	}
}

func TestMiddleware(t *testing.T) {
	initLang(t, "en")

	var got string
	h := Middleware("ru")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "ErrUpstream")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != "Сервис вопросов недоступен." {
		t.Errorf("middleware localizer produced %q", got)
	}
}

func TestMiddlewareAcceptLanguage(t *testing.T) {
	initLang(t, "en")

	var got string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "NoQuestions")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.8")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "Вопросы не сгенерированы." {
		t.Errorf("Accept-Language ru produced %q", got)
	}
}
