package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	jobdomain "jobpulse-backend/internal/job/domain"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

// OpenAIService implements Analyzer using the OpenAI chat completions API
// with forced JSON output.
type OpenAIService struct {
	apiKey string
	model  string
	client *http.Client
}

// NewOpenAIService creates an OpenAI-backed mail analyzer
func NewOpenAIService(apiKey, model string) *OpenAIService {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	return &OpenAIService{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// AnalyzeMail implements Analyzer
func (s *OpenAIService) AnalyzeMail(ctx context.Context, mail Mail) (*Analysis, error) {
	payload := chatRequest{
		Model:          s.model,
		Temperature:    0,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages:       buildMessages(mail),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openAIChatURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	content := "{}"
	if len(result.Choices) > 0 {
		content = result.Choices[0].Message.Content
	}

	analysis, err := parseAnalysisJSON([]byte(content))
	if err != nil {
		return nil, err
	}
	analysis.TokensUsed = result.Usage.TotalTokens
	return analysis, nil
}

// parseAnalysisJSON validates the model's JSON output and normalizes it:
// status collapses to the canonical set, confidence is clamped, and the
// extracted fields are dropped for mails that are not job related.
func parseAnalysisJSON(raw []byte) (*Analysis, error) {
	var payload struct {
		IsJobRelated *bool            `json:"isJobRelated"`
		Company      *string          `json:"company"`
		Position     *string          `json:"position"`
		Status       string   `json:"status"`
		EventType    *string  `json:"eventType"`
		Confidence   *float64 `json:"confidence"`
		Reasoning    *string  `json:"reasoning"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("AI_OUTPUT_NOT_JSON: %w", err)
	}
	if payload.IsJobRelated == nil {
		return nil, fmt.Errorf("AI_BAD_isJobRelated")
	}
	if payload.Confidence == nil {
		return nil, fmt.Errorf("AI_BAD_confidence")
	}

	a := &Analysis{
		IsJobRelated: *payload.IsJobRelated,
		Company:      payload.Company,
		Position:     payload.Position,
		Status:       jobdomain.NormalizeStatus(payload.Status),
		EventType:    payload.EventType,
		Confidence:   jobdomain.Clamp01(*payload.Confidence),
		Reasoning:    payload.Reasoning,
	}
	if !a.IsJobRelated {
		a.Company = nil
		a.Position = nil
		a.Status = jobdomain.StatusUnknown
		a.EventType = nil
	}
	return a, nil
}
