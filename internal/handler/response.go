package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lifedash/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrNoFileProvided):
		return http.StatusBadRequest, "NO_FILE_PROVIDED", "file field is required"
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "unsupported media type; allowed: pdf, jpg, png, webp"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrAllEnginesFailed):
		return http.StatusBadGateway, "ALL_ENGINES_FAILED", "every OCR engine failed to read the document"
	case errors.Is(err, domain.ErrClassificationFailed):
		return http.StatusBadGateway, "CLASSIFICATION_FAILED", "document classification failed"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusBadGateway, "EXTRACTION_FAILED", "field extraction failed"
	case errors.Is(err, domain.ErrPipelineTimeout):
		return http.StatusGatewayTimeout, "PIPELINE_TIMEOUT", "document processing exceeded the time budget"
	case errors.Is(err, domain.ErrInvalidLifeDomain):
		return http.StatusBadRequest, "INVALID_DOMAIN", "unknown life domain; allowed: finance, health, home, pets, insurance, vehicles, personal, other"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// suggestionFor produces a human-readable next step for pipeline failures.
// Credential problems get a different hint than transient provider errors.
func suggestionFor(err error) string {
	detail := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, domain.ErrAllEnginesFailed):
		if strings.Contains(detail, "api key") || strings.Contains(detail, "not configured") ||
			strings.Contains(detail, "401") || strings.Contains(detail, "403") {
			return "Check the OCR provider credentials in the server configuration."
		}
		return "The OCR providers may be temporarily unavailable. Try again in a minute."
	case errors.Is(err, domain.ErrClassificationFailed), errors.Is(err, domain.ErrExtractionFailed):
		if strings.Contains(detail, "api key") || strings.Contains(detail, "not configured") {
			return "Check the AI provider API key in the server configuration."
		}
		return "The AI provider may be temporarily unavailable. Try again in a minute."
	case errors.Is(err, domain.ErrPipelineTimeout):
		return "Try a smaller image, or retry when the local OCR queue is less busy."
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return "Convert the document to PDF, JPG, PNG, or WEBP and retry."
	default:
		return ""
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}

// IngestError is the failure body of the ingestion surface. Unlike the CRUD
// envelope it is flat, and it carries the underlying failure detail plus a
// suggestion, since the user is typically standing there with the document
// in hand.
type IngestError struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// HandleIngestError maps a pipeline error onto the flat ingestion failure
// body.
func HandleIngestError(c *gin.Context, err error) {
	status, _, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] ingest error: %v", requestID, err)
	}
	body := IngestError{Error: msg, Suggestion: suggestionFor(err)}
	if status >= 500 {
		body.Details = err.Error()
	}
	c.JSON(status, body)
}
