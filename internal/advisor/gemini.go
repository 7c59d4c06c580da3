// Package advisor forwards portfolio questions to a hosted Gemini model.
package advisor

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"cryptovision/pkg/metrics"
)

const systemPrompt = "You are a cryptocurrency portfolio assistant. " +
	"You are given the user's current portfolio and a question. " +
	"Answer concisely and in the language of the question. " +
	"Do not give guarantees about future prices."

// Gemini implements port.Advisor over the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// New creates the Gemini advisor.
func New(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, logger: logger.Named("Advisor")}, nil
}

// Advise sends the question plus the serialized portfolio and returns the
// model's text verbatim. No structure is imposed on the response.
func (g *Gemini) Advise(ctx context.Context, question, portfolioSummary string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nPortfolio: %s\n\nQuestion: %s", systemPrompt, portfolioSummary, question)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		metrics.AdvisorRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("generating advice: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		metrics.AdvisorRequests.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("empty response from model %s", g.model)
	}

	metrics.AdvisorRequests.WithLabelValues("success").Inc()
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
