package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lifedash/internal/config"
	"lifedash/internal/domain"
	"lifedash/internal/port"
)

const (
	imagesURL = "https://vision.googleapis.com/v1/images:annotate"
	filesURL  = "https://vision.googleapis.com/v1/files:annotate"
)

// Engine implements port.TextRecognizer using the Google Cloud Vision REST
// API: images:annotate for images, files:annotate for PDFs.
type Engine struct {
	apiKey    string
	imagesURL string
	filesURL  string
	client    *http.Client
}

// NewEngine creates a Vision-based recognizer from an engine config.
func NewEngine(cfg *config.EngineConfig) *Engine {
	return newEngine(cfg, imagesURL, filesURL)
}

// NewEngineWithEndpoints creates a recognizer pointing at custom API
// endpoints (for testing).
func NewEngineWithEndpoints(cfg *config.EngineConfig, imagesEndpoint, filesEndpoint string) *Engine {
	return newEngine(cfg, imagesEndpoint, filesEndpoint)
}

func newEngine(cfg *config.EngineConfig, imagesEndpoint, filesEndpoint string) *Engine {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if cfg.Endpoint != "" {
		imagesEndpoint = cfg.Endpoint + "/v1/images:annotate"
		filesEndpoint = cfg.Endpoint + "/v1/files:annotate"
	}
	return &Engine{
		apiKey:    cfg.APIKey,
		imagesURL: imagesEndpoint,
		filesURL:  filesEndpoint,
		client:    &http.Client{Timeout: timeout},
	}
}

func (e *Engine) Recognize(ctx context.Context, input port.RecognizeInput) (*domain.RecognitionResult, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("google vision API key is not configured")
	}

	encoded := base64.StdEncoding.EncodeToString(input.FileBytes)
	var (
		endpoint string
		reqBody  map[string]interface{}
	)

	if input.ContentType == "application/pdf" {
		endpoint = e.filesURL
		reqBody = map[string]interface{}{
			"requests": []map[string]interface{}{{
				"inputConfig": map[string]interface{}{
					"content":  encoded,
					"mimeType": "application/pdf",
				},
				"features": []map[string]interface{}{{"type": "DOCUMENT_TEXT_DETECTION"}},
			}},
		}
	} else {
		endpoint = e.imagesURL
		reqBody = map[string]interface{}{
			"requests": []map[string]interface{}{{
				"image":    map[string]interface{}{"content": encoded},
				"features": []map[string]interface{}{{"type": "DOCUMENT_TEXT_DETECTION"}},
			}},
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+e.apiKey, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling vision API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	if input.ContentType == "application/pdf" {
		return parseFilesResponse(respBody)
	}
	return parseImagesResponse(respBody)
}

type annotateResponse struct {
	Responses []annotation `json:"responses"`
}

type filesAnnotateResponse struct {
	Responses []struct {
		Responses []annotation `json:"responses"`
	} `json:"responses"`
}

type annotation struct {
	FullTextAnnotation *struct {
		Text  string `json:"text"`
		Pages []struct {
			Confidence float64 `json:"confidence"`
		} `json:"pages"`
	} `json:"fullTextAnnotation"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseImagesResponse(body []byte) (*domain.RecognitionResult, error) {
	var resp annotateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("empty response from vision API")
	}
	return annotationResult(resp.Responses)
}

func parseFilesResponse(body []byte) (*domain.RecognitionResult, error) {
	var resp filesAnnotateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	var pages []annotation
	for _, outer := range resp.Responses {
		pages = append(pages, outer.Responses...)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("empty response from vision API")
	}
	return annotationResult(pages)
}

// annotationResult concatenates page texts and averages page confidence.
// A response with no text annotation at all is valid: nothing legible.
func annotationResult(pages []annotation) (*domain.RecognitionResult, error) {
	var (
		text       string
		confSum    float64
		confCount  int
		legiblePos bool
	)
	for _, a := range pages {
		if a.Error != nil {
			return nil, fmt.Errorf("vision annotation error (code %d): %s", a.Error.Code, a.Error.Message)
		}
		if a.FullTextAnnotation == nil {
			continue
		}
		legiblePos = true
		if text != "" {
			text += "\n"
		}
		text += a.FullTextAnnotation.Text
		for _, p := range a.FullTextAnnotation.Pages {
			confSum += p.Confidence
			confCount++
		}
	}

	confidence := 0.0
	if confCount > 0 {
		confidence = confSum / float64(confCount)
	} else if legiblePos {
		confidence = 0.9
	}

	return &domain.RecognitionResult{Text: text, Confidence: confidence}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
