package handler

import (
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"lifedash/internal/domain"
	"lifedash/internal/service"
)

// IngestHandler handles the document smart-scan endpoint.
type IngestHandler struct {
	ingestService service.IngestService
	maxFileBytes  int64
}

// NewIngestHandler creates a new IngestHandler. maxFileMB caps the upload
// size; zero means 25MB.
func NewIngestHandler(ingestService service.IngestService, maxFileMB int64) *IngestHandler {
	if maxFileMB <= 0 {
		maxFileMB = 25
	}
	return &IngestHandler{ingestService: ingestService, maxFileBytes: maxFileMB << 20}
}

// Ingest handles POST /api/v1/ingest. It accepts a multipart upload in the
// "file" field and runs the full pipeline synchronously, returning the
// ingestion result. Set the "enhanced" form field to "true" for per-field
// confidence extraction.
func (h *IngestHandler) Ingest(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		HandleIngestError(c, domain.ErrNoFileProvided)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.maxFileBytes {
		HandleIngestError(c, domain.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, IngestError{Error: "could not read uploaded file"})
		return
	}
	if int64(len(data)) > h.maxFileBytes {
		HandleIngestError(c, domain.ErrFileTooLarge)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromName(header.Filename)
	}

	enhanced := strings.EqualFold(c.PostForm("enhanced"), "true")

	input := service.IngestInput{
		FileBytes:   data,
		ContentType: contentType,
		Filename:    header.Filename,
		Enhanced:    enhanced,
	}

	result, err := h.ingestService.Ingest(c.Request.Context(), input)
	if err != nil {
		HandleIngestError(c, err)
		return
	}

	requestID, _ := c.Get("request_id")
	log.Printf("[%s] ingestHandler.Ingest: %s classified as %q via %s in %dms",
		requestID, header.Filename, result.DocumentType, result.OCREngine, result.DurationMs)

	// The ingestion result is the response body itself, not wrapped in the
	// CRUD envelope.
	c.JSON(http.StatusOK, result)
}

// contentTypeFromName falls back to the filename extension when the client
// did not send a usable Content-Type part header.
func contentTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
