package logstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ArbiOps/internal/model"
)

// DefaultGenAIBaseURL is the public Gemini REST endpoint.
const DefaultGenAIBaseURL = "https://generativelanguage.googleapis.com"

// GenAISource asks a Gemini-compatible generateContent endpoint for log lines.
type GenAISource struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// NewGenAISource creates a source with optional proxy support.
func NewGenAISource(baseURL, apiKey, modelName, proxyURL string) *GenAISource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultGenAIBaseURL
	}
	return &GenAISource{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (g *GenAISource) Name() string { return "genai" }

type genPart struct {
	Text string `json:"text"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genRequest struct {
	Contents         []genContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string         `json:"responseMimeType"`
		ResponseSchema   map[string]any `json:"responseSchema"`
	} `json:"generationConfig"`
}

type genResponse struct {
	Candidates []struct {
		Content genContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func prompt(count int) string {
	return fmt.Sprintf(`Generate %d short, highly technical log lines for an automated e-commerce arbitrage bot called Arbi.
The bot scans retailers, creates SEO pages, renders video ads, manages ad spend on TikTok/Meta, optimizes ROAS, and fulfills orders.

Format the output as a JSON array of objects.
The categories must be one of: "SCAN", "LIST", "AD", "CAMPAIGN", "ROI", "FULFILL".
The message should be technical jargon (e.g., "Latency 24ms", "Bid cap adj", "Tracking updated").
Keep messages under 10 words.`, count)
}

func responseSchema() map[string]any {
	cats := make([]string, len(model.GeneratedCategories))
	for i, c := range model.GeneratedCategories {
		cats[i] = string(c)
	}
	return map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"category": map[string]any{"type": "STRING", "enum": cats},
				"message":  map[string]any{"type": "STRING"},
			},
		},
	}
}

func (g *GenAISource) RequestLogs(ctx context.Context, count int) ([]model.LogEntry, error) {
	if count <= 0 {
		return nil, providerErr(g.Name(), "request", fmt.Errorf("count must be positive, got %d", count))
	}
	if g.APIKey == "" {
		return nil, providerErr(g.Name(), "request", fmt.Errorf("api key not configured"))
	}

	var body genRequest
	body.Contents = []genContent{{Parts: []genPart{{Text: prompt(count)}}}}
	body.GenerationConfig.ResponseMimeType = "application/json"
	body.GenerationConfig.ResponseSchema = responseSchema()
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, providerErr(g.Name(), "encode", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.BaseURL, url.PathEscape(g.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, providerErr(g.Name(), "request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, providerErr(g.Name(), "request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providerErr(g.Name(), "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, providerErr(g.Name(), "request", fmt.Errorf("status %d, body: %s", resp.StatusCode, string(data)))
	}

	var gr genResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return nil, providerErr(g.Name(), "decode", err)
	}
	if gr.Error != nil {
		return nil, providerErr(g.Name(), "request", fmt.Errorf("api error %d: %s", gr.Error.Code, gr.Error.Message))
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, providerErr(g.Name(), "decode", fmt.Errorf("no candidates returned"))
	}

	var raw []model.LogEntry
	if err := json.Unmarshal([]byte(gr.Candidates[0].Content.Parts[0].Text), &raw); err != nil {
		return nil, providerErr(g.Name(), "parse", err)
	}
	return normalize(g.Name(), raw, count)
}
