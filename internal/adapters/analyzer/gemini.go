package analyzer

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/carebow/triage-api/internal/domain"
)

// GeminiAnalyzer implements domain.SymptomAnalyzer on Vertex AI (Gemini).
type GeminiAnalyzer struct {
	client    *genai.Client
	modelName string
}

func NewGeminiAnalyzer(ctx context.Context, projectID, location, modelName string) (*GeminiAnalyzer, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("project and location are required for the Gemini analyzer")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GeminiAnalyzer{
		client:    client,
		modelName: modelName,
	}, nil
}

func (a *GeminiAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	var contents []*genai.Content
	for _, entry := range req.ConversationHistory {
		role := genai.Role(genai.RoleUser)
		if entry.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(entry.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.SymptomText, genai.RoleUser))

	temp := float32(0.3)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildSystemPrompt(req.ClinicalContext), genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   1500,
		ResponseMIMEType:  "application/json",
	}

	res, err := a.client.Models.GenerateContent(ctx, a.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return nil, fmt.Errorf("vertex returned empty text")
	}

	payload, err := parseModelPayload(text)
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
