// Package present writes generated questions as JSON or runs them as an
// interactive terminal quiz.
package present

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pavelanni/quizgen/internal/i18n"
	"github.com/pavelanni/quizgen/internal/model"
)

// WriteJSON writes questions as a single JSON array followed by a newline.
// A nil or empty list is written as [].
func WriteJSON(w io.Writer, questions []model.Question) error {
	if questions == nil {
		questions = []model.Question{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(questions); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Result summarizes an interactive session.
type Result struct {
	Answered    int
	Correct     int
	Interrupted bool
}

// Quiz asks questions on Out and reads answers from In, one per line.
type Quiz struct {
	In  io.Reader
	Out io.Writer
}

// Run asks each question in turn. An out-of-range answer skips to the next
// question; non-numeric input, end of input or ctx cancellation stops the
// quiz early.
func (q *Quiz) Run(ctx context.Context, questions []model.Question) Result {
	var res Result
	lines := readLines(ctx, q.In)

	for i, question := range questions {
		maxIdx := len(question.Choices) - 1
		fmt.Fprintf(q.Out, "\n%s\n", i18n.Td(ctx, "QuestionHeader", map[string]any{"N": i + 1, "Text": question.Question}))
		for idx, choice := range question.Choices {
			fmt.Fprintf(q.Out, "  %d. %s\n", idx, choice)
		}
		fmt.Fprintf(q.Out, "%s ", i18n.Td(ctx, "AnswerPrompt", map[string]any{"Max": maxIdx}))

		line, ok := nextLine(ctx, lines)
		if !ok {
			res.Interrupted = true
			break
		}
		answer, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			res.Interrupted = true
			break
		}
		if answer < 0 || answer > maxIdx {
			fmt.Fprintln(q.Out, i18n.Td(ctx, "InvalidChoice", map[string]any{"Max": maxIdx}))
			continue
		}

		res.Answered++
		if answer == question.AnswerIndex {
			res.Correct++
			fmt.Fprintln(q.Out, i18n.T(ctx, "Correct"))
		} else {
			fmt.Fprintln(q.Out, i18n.Td(ctx, "Wrong", map[string]any{"Answer": question.CorrectChoice()}))
		}
		if question.Explanation != "" {
			fmt.Fprintln(q.Out, i18n.Td(ctx, "Explanation", map[string]any{"Text": question.Explanation}))
		}
	}

	if res.Interrupted {
		fmt.Fprintf(q.Out, "\n%s\n", i18n.T(ctx, "QuizInterrupted"))
	}
	if res.Answered > 0 {
		fmt.Fprintln(q.Out, i18n.Td(ctx, "Score", map[string]any{"Correct": res.Correct, "Answered": res.Answered}))
	}
	return res
}

func nextLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}

// readLines feeds r line by line into the returned channel, closing it at
// end of input. A blocked terminal read cannot be cancelled, so the goroutine
// only stops sending once ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
