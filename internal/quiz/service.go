package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/quizgen/internal/llm/prompts"
	"github.com/pavelanni/quizgen/internal/model"
	"github.com/pavelanni/quizgen/internal/usage"
)

// Completer sends a prompt to a text-generation API and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Recorder persists a record of each upstream call.
type Recorder interface {
	RecordCall(rec model.CallRecord) error
}

// Service turns quiz requests into validated questions.
type Service struct {
	llm      Completer
	counter  *usage.Counter
	recorder Recorder
}

// New creates a Service. counter and recorder may be nil.
func New(c Completer, counter *usage.Counter, recorder Recorder) *Service {
	return &Service{llm: c, counter: counter, recorder: recorder}
}

// Fetch builds the prompt, calls the upstream API once and parses the reply.
// Returned errors wrap ErrUpstream, ErrParse or ErrMalformed.
func (s *Service) Fetch(ctx context.Context, req model.Request) ([]model.Question, error) {
	prompt, err := prompts.Build(req)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	rec := model.CallRecord{
		ID:         uuid.NewString(),
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Requested:  req.Count,
		CreatedAt:  time.Now().UTC(),
	}

	raw, err := s.llm.Complete(ctx, prompt)
	s.countCall()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUpstream, err)
		s.record(rec, err)
		return nil, err
	}

	questions, err := ParseQuestions(raw)
	if err != nil {
		err = fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
		s.record(rec, err)
		return nil, err
	}

	if len(questions) != req.Count {
		slog.Warn("question count differs from request",
			"requested", req.Count, "returned", len(questions), "topic", req.Topic)
	}
	rec.Returned = len(questions)
	s.record(rec, nil)
	return questions, nil
}

// Generate is Fetch with failures logged and downgraded to an empty,
// non-nil slice.
func (s *Service) Generate(ctx context.Context, req model.Request) []model.Question {
	questions, err := s.Fetch(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrParse):
			slog.Error("error parsing JSON from LLM output", "error", err)
		case errors.Is(err, ErrMalformed):
			slog.Error("LLM output does not match the question schema", "error", err)
		default:
			slog.Error("error calling LLM API", "error", err)
		}
		return []model.Question{}
	}
	return questions
}

func (s *Service) countCall() {
	if s.counter == nil {
		return
	}
	n, err := s.counter.Increment()
	if err != nil {
		slog.Warn("failed to persist usage count", "count", n, "error", err)
		return
	}
	slog.Debug("API usage", "count", n)
}

func (s *Service) record(rec model.CallRecord, err error) {
	if s.recorder == nil {
		return
	}
	rec.Status = callStatus(err)
	if err != nil {
		rec.Error = err.Error()
	}
	if rerr := s.recorder.RecordCall(rec); rerr != nil {
		slog.Warn("failed to record API call", "id", rec.ID, "error", rerr)
	}
}

func callStatus(err error) model.CallStatus {
	switch {
	case err == nil:
		return model.CallOK
	case errors.Is(err, ErrParse):
		return model.CallParseError
	case errors.Is(err, ErrMalformed):
		return model.CallMalformed
	default:
		return model.CallUpstreamError
	}
}
