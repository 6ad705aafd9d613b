package sqlguard

import (
	"context"
	"errors"
	"strings"
)

// LanguageModel completes a prompt
type LanguageModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Candidate records one pass through the pipeline
type Candidate struct {
	Request       string
	GeneratedText string
	ExtractedSQL  *string
	Accepted      Accepted
	Rejection     *Rejection
}

// OK reports whether the candidate produced an executable statement
func (c *Candidate) OK() bool {
	return c.Rejection == nil && !c.Accepted.IsZero()
}

// Pipeline asks a language model for SQL and validates what comes back
type Pipeline struct {
	model  LanguageModel
	prompt func(request string) string
}

// NewPipeline creates a pipeline. prompt renders the full model prompt for
// an analyst request.
func NewPipeline(model LanguageModel, prompt func(request string) string) *Pipeline {
	return &Pipeline{model: model, prompt: prompt}
}

// GenerateAndValidate runs prompt, model, extraction, normalization and
// policy. A rejected statement is reported on the Candidate; the error is
// only set when the model could not be called.
func (p *Pipeline) GenerateAndValidate(ctx context.Context, request string) (*Candidate, error) {
	c := &Candidate{Request: request}
	if strings.TrimSpace(request) == "" {
		c.Rejection = reject(ReasonRequestRequired)
		return c, nil
	}

	text, err := p.model.Complete(ctx, p.prompt(request))
	if err != nil {
		return nil, err
	}
	c.GeneratedText = text

	sql, ok := Extract(text)
	if !ok {
		c.Rejection = reject(ReasonNoSQL)
		return c, nil
	}
	c.ExtractedSQL = &sql

	accepted, err := Validate(sql)
	if err != nil {
		var rej *Rejection
		if errors.As(err, &rej) {
			c.Rejection = rej
			return c, nil
		}
		return nil, err
	}
	c.Accepted = accepted
	return c, nil
}
