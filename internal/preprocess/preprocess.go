package preprocess

import (
	"bytes"
	"image"
	"log"

	"github.com/disintegration/imaging"

	"lifedash/internal/config"
	"lifedash/internal/domain"
)

// Preprocessor normalizes uploaded images before OCR. Both operations are
// best-effort: on any failure the original bytes are returned unchanged so
// preprocessing can never abort the pipeline.
type Preprocessor struct {
	cfg config.PreprocessConfig
}

// New creates a Preprocessor with the given thresholds, applying defaults
// for unset values.
func New(cfg config.PreprocessConfig) *Preprocessor {
	if cfg.CompressThresholdKB <= 0 {
		cfg.CompressThresholdKB = 500
	}
	if cfg.MaxDimensionPx <= 0 {
		cfg.MaxDimensionPx = 2000
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = 85
	}
	if cfg.LocalOCRMaxPx <= 0 {
		cfg.LocalOCRMaxPx = 1600
	}
	return &Preprocessor{cfg: cfg}
}

// Compress re-encodes oversized images for the cloud engines: fit within
// MaxDimensionPx (never upscaling) and re-encode as JPEG. It only runs when
// the payload is an image above the size threshold. The second return value
// reports whether compression was applied.
func (p *Preprocessor) Compress(data []byte, contentType string) ([]byte, bool) {
	if !domain.IsImageContentType(contentType) {
		return data, false
	}
	if len(data) <= p.cfg.CompressThresholdKB*1024 {
		return data, false
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		log.Printf("preprocess.Compress: decode failed, passing through: %v", err)
		return data, false
	}

	img = p.fit(img, p.cfg.MaxDimensionPx)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.cfg.JPEGQuality)); err != nil {
		log.Printf("preprocess.Compress: encode failed, passing through: %v", err)
		return data, false
	}
	if buf.Len() >= len(data) {
		// Re-encoding didn't help; keep the original.
		return data, false
	}

	log.Printf("preprocess.Compress: %d -> %d bytes", len(data), buf.Len())
	return buf.Bytes(), true
}

// OptimizeForLocalOCR prepares an image for the tesseract fallback:
// orientation correction, fit within LocalOCRMaxPx, grayscale, contrast
// normalization, lossless PNG encode. Returns the original bytes on any
// failure; non-image input passes through unmodified.
func (p *Preprocessor) OptimizeForLocalOCR(data []byte, contentType string) []byte {
	if !domain.IsImageContentType(contentType) {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		log.Printf("preprocess.OptimizeForLocalOCR: decode failed, using original: %v", err)
		return data
	}

	img = p.fit(img, p.cfg.LocalOCRMaxPx)
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 20)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		log.Printf("preprocess.OptimizeForLocalOCR: encode failed, using original: %v", err)
		return data
	}
	return buf.Bytes()
}

// fit downscales img so neither dimension exceeds maxPx, preserving aspect
// ratio and never upscaling.
func (p *Preprocessor) fit(img image.Image, maxPx int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxPx && b.Dy() <= maxPx {
		return img
	}
	return imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)
}
