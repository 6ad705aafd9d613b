package services

import (
	"context"
	"strings"

	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/llm"
)

// AnalysisService asks the language model to explain a single alert
type AnalysisService struct {
	model llm.LanguageModel
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(model llm.LanguageModel) *AnalysisService {
	return &AnalysisService{model: model}
}

// Analyze returns the model's explanation of e
func (s *AnalysisService) Analyze(ctx context.Context, e database.Event) (string, error) {
	text, err := s.model.Complete(ctx, llm.BuildAnalysisPrompt(e))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
