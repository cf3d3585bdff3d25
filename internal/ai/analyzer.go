package ai

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/model"
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const maxAnalysisTokens = 1024

// AlertAnalyzer asks a chat model for an assessment of triggered scan alerts.
// It implements model.Analyzer.
type AlertAnalyzer struct {
	model  string
	client *openai.Client
}

var _ model.Analyzer = (*AlertAnalyzer)(nil)

// NewAlertAnalyzer creates a new analyzer from the AI settings.
func NewAlertAnalyzer(cfg config.AIConfig) (*AlertAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is not configured")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &AlertAnalyzer{
		model:  cfg.Model,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// AnalyzeAlerts returns the model's written assessment of summary.
func (a *AlertAnalyzer) AnalyzeAlerts(ctx context.Context, summary string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a senior network security analyst. "+
			"The FlowSentry batch scanner classified a network flow log with three fixed-threshold heuristics: "+
			"backdoor (repeated non-standard services on high ports), DoS (oversized byte or packet volume) "+
			"and reconnaissance (one source probing many distinct destination ports). "+
			"Assess the alerts below, rank the likely threats by severity and list concrete next steps.\n\n"+
			"--- Alert Data ---\n%s\n--- End of Alert Data ---", summary,
	)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: maxAnalysisTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("AI request timeout: %w", err)
		}
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
