package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	defaultGeminiURL   = "https://generativelanguage.googleapis.com"
	defaultGeminiModel = "gemini-1.5-flash"
)

// Gemini calls the Google Generative Language API. The key rides as a query
// parameter, which is how this API authenticates.
type Gemini struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGemini creates a Gemini client. baseURL and model fall back to the API
// defaults when empty.
func NewGemini(baseURL, apiKey, model string) *Gemini {
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: newHTTPClient(),
	}
}

func (g *Gemini) Name() string { return "gemini" }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Enrich sends the consolidated prompt and returns the candidate text.
func (g *Gemini) Enrich(ctx context.Context, input EnrichInput) (string, error) {
	if g.apiKey == "" {
		return "", ErrNoCredential
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: BuildPrompt(input)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, g.model, url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", classifyStatus(resp.StatusCode, string(bodyBytes))
	}

	var genResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", &MalformedError{Reason: "undecodable response envelope"}
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", &MalformedError{Reason: "no candidate text in response"}
	}

	text := genResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", &MalformedError{Reason: "empty candidate text"}
	}
	return text, nil
}

var _ Provider = (*Gemini)(nil)
