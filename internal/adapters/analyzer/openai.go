package analyzer

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/carebow/triage-api/internal/domain"
)

// OpenAIAnalyzer implements domain.SymptomAnalyzer against the OpenAI chat
// completions API.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

func NewOpenAIAnalyzer(apiKey, model string) (*OpenAIAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required for the OpenAI analyzer")
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIAnalyzer{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req.ClinicalContext)},
	}
	for _, entry := range req.ConversationHistory {
		role := openai.ChatMessageRoleUser
		if entry.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: entry.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.SymptomText,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.3,
		MaxTokens:   1500,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	payload, err := parseModelPayload(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &domain.AnalysisResult{
		SessionID: sessionIDFor(req),
		Analysis: domain.Analysis{
			Response:      payload.Response,
			NeedsMoreInfo: payload.NeedsMoreInfo,
			Preliminary:   payload.PreliminaryAssessment,
		},
	}, nil
}
