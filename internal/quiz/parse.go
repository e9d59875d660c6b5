package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pavelanni/quizgen/internal/model"
)

var (
	// ErrUpstream marks a failed call to the text-generation API.
	ErrUpstream = errors.New("upstream call failed")
	// ErrParse marks a reply that is not valid JSON.
	ErrParse = errors.New("response is not valid JSON")
	// ErrMalformed marks valid JSON that does not match the question schema.
	ErrMalformed = errors.New("malformed upstream response")
)

// rawQuestion uses pointers to tell missing keys from zero values.
type rawQuestion struct {
	Question    *string  `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex *int     `json:"answer_index"`
	Explanation string   `json:"explanation"`
}

// ParseQuestions decodes an LLM reply into questions, preserving order.
// The reply must be a JSON array, optionally wrapped in a Markdown code
// fence. Every element must have a non-empty question, exactly four
// non-empty choices, and an answer_index that points at one of them.
func ParseQuestions(raw string) ([]model.Question, error) {
	text := extractJSON(raw)

	var items []rawQuestion
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: expected a JSON array, got null", ErrMalformed)
	}

	questions := make([]model.Question, 0, len(items))
	for i, it := range items {
		q, err := it.validate()
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %s", ErrMalformed, i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r rawQuestion) validate() (model.Question, error) {
	if r.Question == nil || strings.TrimSpace(*r.Question) == "" {
		return model.Question{}, errors.New(`missing "question"`)
	}
	if len(r.Choices) != model.NumChoices {
		return model.Question{}, fmt.Errorf("want %d choices, got %d", model.NumChoices, len(r.Choices))
	}
	for i, c := range r.Choices {
		if strings.TrimSpace(c) == "" {
			return model.Question{}, fmt.Errorf("choice %d is empty", i)
		}
	}
	if r.AnswerIndex == nil {
		return model.Question{}, errors.New(`missing "answer_index"`)
	}
	if *r.AnswerIndex < 0 || *r.AnswerIndex >= len(r.Choices) {
		return model.Question{}, fmt.Errorf("answer_index %d out of range 0-%d", *r.AnswerIndex, len(r.Choices)-1)
	}
	return model.Question{
		Question:    *r.Question,
		Choices:     r.Choices,
		AnswerIndex: *r.AnswerIndex,
		Explanation: r.Explanation,
	}, nil
}

// extractJSON removes a surrounding Markdown code fence and any chatter
// before the first '[' or after the last ']'.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		start := 3
		// Skip the optional language tag on the fence line.
		if nl := strings.Index(content[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(content[start:], "```"); end != -1 {
			content = content[start : start+end]
		} else {
			content = content[start:]
		}
		content = strings.TrimSpace(content)
	}

	if strings.HasPrefix(content, "[") || strings.HasPrefix(content, "{") {
		return content
	}
	if s := strings.Index(content, "["); s != -1 {
		if e := strings.LastIndex(content, "]"); e > s {
			return content[s : e+1]
		}
	}
	return content
}
