package azureread

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lifedash/internal/config"
	"lifedash/internal/domain"
	"lifedash/internal/port"
)

const analyzePath = "/computervision/imageanalysis:analyze?features=read&api-version=2024-02-01"

// Engine implements port.TextRecognizer using the Azure AI Vision Image
// Analysis REST API (read feature). Images only; PDF falls through to the
// next engine in the chain.
type Engine struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewEngine creates an Azure-based recognizer from an engine config. The
// config endpoint is the resource base URL (https://<res>.cognitiveservices.azure.com).
func NewEngine(cfg *config.EngineConfig) *Engine {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *Engine) Recognize(ctx context.Context, input port.RecognizeInput) (*domain.RecognitionResult, error) {
	if e.apiKey == "" || e.endpoint == "" {
		return nil, fmt.Errorf("azure vision credentials are not configured")
	}
	if input.ContentType == "application/pdf" {
		return nil, fmt.Errorf("application/pdf is not supported by the azure_vision engine")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+analyzePath, bytes.NewReader(input.FileBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling azure vision API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure vision API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	return parseResponse(respBody)
}

type analyzeResponse struct {
	ReadResult struct {
		Blocks []struct {
			Lines []struct {
				Text  string `json:"text"`
				Words []struct {
					Confidence float64 `json:"confidence"`
				} `json:"words"`
			} `json:"lines"`
		} `json:"blocks"`
	} `json:"readResult"`
}

func parseResponse(body []byte) (*domain.RecognitionResult, error) {
	var resp analyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	var (
		sb        strings.Builder
		confSum   float64
		confCount int
	)
	for _, block := range resp.ReadResult.Blocks {
		for _, line := range block.Lines {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(line.Text)
			for _, w := range line.Words {
				confSum += w.Confidence
				confCount++
			}
		}
	}

	confidence := 0.0
	if confCount > 0 {
		confidence = confSum / float64(confCount)
	}

	return &domain.RecognitionResult{Text: sb.String(), Confidence: confidence}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
