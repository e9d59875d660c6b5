package model

import (
	"fmt"
	"strings"
)

// Question is a single multiple-choice quiz question as produced by the LLM.
type Question struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation,omitempty"`
}

// CorrectChoice returns the text of the choice at AnswerIndex, or an empty
// string when the index is out of range.
func (q Question) CorrectChoice() string {
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Choices) {
		return ""
	}
	return q.Choices[q.AnswerIndex]
}

// NumChoices is the number of choices every generated question must carry.
const NumChoices = 4

// Mode selects how generated questions are presented.
type Mode string

const (
	// ModeJSON writes the question list to stdout for other programs.
	ModeJSON Mode = "json"
	// ModeInteractive runs a terminal quiz.
	ModeInteractive Mode = "interactive"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeJSON, ModeInteractive:
		return m, nil
	default:
		return "", fmt.Errorf("invalid mode %q (want %s or %s)", s, ModeJSON, ModeInteractive)
	}
}

// Request holds the parameters that shape a generated quiz.
type Request struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

const (
	DefaultTopic      = "HTML Basics"
	DefaultDifficulty = "beginner"
	DefaultCount      = 1
)

// DefaultRequest returns the request used when no flags are given.
func DefaultRequest() Request {
	return Request{
		Topic:      DefaultTopic,
		Difficulty: DefaultDifficulty,
		Count:      DefaultCount,
	}
}
