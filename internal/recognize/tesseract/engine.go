package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifedash/internal/config"
	"lifedash/internal/domain"
	"lifedash/internal/port"
)

// Runner lets tests stub the external tesseract binary.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// Engine runs the on-device tesseract binary. It is not safe for
// concurrent use; wrap it in a Queue.
type Engine struct {
	cfg    config.LocalOCRConfig
	runner Runner
}

// NewEngine creates a local OCR engine, applying config defaults.
func NewEngine(cfg config.LocalOCRConfig) *Engine {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 60
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &Engine{cfg: cfg, runner: execRunner{}}
}

// NewEngineWithRunner creates an engine with a stubbed runner (for tests).
func NewEngineWithRunner(cfg config.LocalOCRConfig, runner Runner) *Engine {
	e := NewEngine(cfg)
	e.runner = runner
	return e
}

// recognize performs one OCR pass. Called only from the queue worker, so
// there is never more than one invocation in flight.
func (e *Engine) recognize(ctx context.Context, input port.RecognizeInput, progress func(pct int)) (*domain.RecognitionResult, error) {
	if input.ContentType == "application/pdf" {
		return nil, fmt.Errorf("application/pdf is not supported by the tesseract_local engine")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.TimeoutSecs)*time.Second)
	defer cancel()

	path := filepath.Join(e.cfg.WorkDir, "lifedash-ocr-"+uuid.New().String()+".png")
	if err := os.WriteFile(path, input.FileBytes, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp image: %w", err)
	}
	defer func() { _ = os.Remove(path) }()
	progress(10)

	args := []string{path, "stdout", "-l", e.cfg.Language, "--psm", strconv.Itoa(e.cfg.PSM)}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 300))
	}
	progress(60)

	text := normalize(string(out))

	confidence, err := e.tsvConfidence(ctx, path)
	if err != nil {
		// Confidence is advisory; keep the text.
		log.Printf("tesseract.Engine: tsv confidence failed: %v", err)
		confidence = 0.5
	}
	progress(90)

	return &domain.RecognitionResult{Text: text, Confidence: confidence}, nil
}

// tsvConfidence reruns tesseract with TSV output and averages per-word
// confidence (column 11, 0..100).
func (e *Engine) tsvConfidence(ctx context.Context, path string) (float64, error) {
	args := []string{path, "stdout", "-l", e.cfg.Language, "--psm", strconv.Itoa(e.cfg.PSM), "tsv"}
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract tsv: %w", err)
	}

	var sum float64
	var count int
	for _, line := range strings.Split(string(out), "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		if strings.TrimSpace(cols[11]) == "" {
			continue
		}
		sum += conf
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count) / 100.0, nil
}

// normalize strips trailing whitespace noise tesseract leaves on lines.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\f")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
