package prompts

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/pavelanni/quizgen/internal/model"
)

//go:embed quiz.txt
var quizText string

var quizTemplate = template.Must(template.New("quiz").Parse(quizText))

// QuizData holds template data for the quiz generation prompt.
type QuizData struct {
	Topic      string
	Difficulty string
	Count      int
}

// Build fills the quiz prompt template. Inputs are substituted as given,
// including zero or negative counts.
func Build(req model.Request) (string, error) {
	data := QuizData{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Count:      req.Count,
	}

	var buf bytes.Buffer
	if err := quizTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
