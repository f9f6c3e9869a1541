// Package ai talks to the OpenAI chat-completions API to identify a plant
// from a photo and produce German care tips. The rest of the application
// treats the result as an opaque record of free-text fields.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pflanzen-manager/internal/model"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Analysis is the result of one photo analysis.
type Analysis struct {
	// Name is the identified species or common plant name.
	Name string `json:"name"`
	Tips model.CareTips
}

// Client is an OpenAI chat-completions client for plant photo analysis.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(apiKey, model string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Enabled reports whether an API key is configured. Without a key the bot
// still works, it just cannot analyze photos.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

const systemPrompt = `Du bist ein hilfreicher Botaniker. Identifiziere die Pflanze auf dem Bild und gib Pflegehinweise auf Deutsch.
Antworte ausschließlich mit einem JSON-Objekt dieser Form:
{
  "name": "Gebräuchlicher Pflanzenname",
  "watering": "Gießempfehlung mit konkretem Intervall, z.B. 'Gießen Sie alle 5-7 Tage'",
  "fertilizing": "Düngeempfehlung mit konkretem Intervall, z.B. 'Düngen alle 2 Wochen'",
  "repotting": "Umtopfempfehlung",
  "location": "Standortempfehlung",
  "health": "Einschätzung des Gesundheitszustands",
  "spraying": "Empfehlung zur Luftfeuchtigkeit/Besprühen"
}
Kein Markdown, keine Erklärung.`

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type analysisPayload struct {
	Name        string `json:"name"`
	Watering    string `json:"watering"`
	Fertilizing string `json:"fertilizing"`
	Repotting   string `json:"repotting"`
	Location    string `json:"location"`
	Health      string `json:"health"`
	Spraying    string `json:"spraying"`
}

// AnalyzePlant sends a photo (as a data URL or any fetchable URL) to the
// model and parses the structured care-tip response.
func (c *Client) AnalyzePlant(ctx context.Context, photoURL string) (*Analysis, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("no OpenAI API key configured")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: []contentPart{{Type: "text", Text: systemPrompt}},
			},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: "Bitte analysiere diese Pflanze."},
					{Type: "image_url", ImageURL: &imageURL{URL: photoURL}},
				},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai error: status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("no content returned from openai")
	}

	analysis, err := parseAnalysis(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Info("plant analyzed",
		zap.String("name", analysis.Name),
		zap.Duration("latency", time.Since(start)),
	)
	return analysis, nil
}

// parseAnalysis extracts the analysis JSON from model output, tolerating
// markdown fences and surrounding prose.
func parseAnalysis(content string) (*Analysis, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var p analysisPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("analysis has no plant name")
	}

	return &Analysis{
		Name: strings.TrimSpace(p.Name),
		Tips: model.CareTips{
			Watering:    p.Watering,
			Fertilizing: p.Fertilizing,
			Repotting:   p.Repotting,
			Location:    p.Location,
			Health:      p.Health,
			Spraying:    p.Spraying,
		},
	}, nil
}

// extractJSON defensively pulls a JSON object out of possibly noisy output.
func extractJSON(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	if cut, found := strings.CutPrefix(s, "```json"); found {
		s = cut
	} else if cut, found := strings.CutPrefix(s, "```"); found {
		s = cut
	}
	if cut, found := strings.CutSuffix(s, "```"); found {
		s = cut
	}
	s = strings.TrimSpace(s)

	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("no JSON object in model output")
	}
	extracted := s[start : end+1]
	if !json.Valid([]byte(extracted)) {
		return nil, fmt.Errorf("model output is not valid JSON")
	}
	return []byte(extracted), nil
}
