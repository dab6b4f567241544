package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lifedash/internal/domain"
	"lifedash/internal/middleware"
	"lifedash/internal/service"
)

// EntryHandler handles the life-domain record store endpoints.
type EntryHandler struct {
	entryService service.EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryService service.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

type createEntryRequest struct {
	Domain      string          `json:"domain" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata"`
}

type updateEntryRequest struct {
	Domain      string          `json:"domain"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata"`
}

// Create handles POST /api/v1/entries
func (h *EntryHandler) Create(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "domain and title are required")
		return
	}

	entry, err := h.entryService.Create(c.Request.Context(), service.EntryCreateInput{
		OwnerID:     ownerID,
		Domain:      domain.NormalizeLifeDomain(req.Domain),
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, entry)
}

// CreateFromIngestion handles POST /api/v1/entries/from-ingestion. It takes
// a multipart form with a "result" part holding the ingestion result JSON
// and, optionally, the original "file" to archive alongside the entry.
func (h *EntryHandler) CreateFromIngestion(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	resultJSON := c.PostForm("result")
	if resultJSON == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "result field is required")
		return
	}

	var result domain.IngestionResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "result field is not valid ingestion result JSON")
		return
	}

	// allow the user to override the suggested domain before filing
	if override := c.PostForm("domain"); override != "" {
		result.SuggestedDomain = domain.NormalizeLifeDomain(override)
	}
	if !domain.KnownLifeDomains[result.SuggestedDomain] {
		HandleError(c, domain.ErrInvalidLifeDomain)
		return
	}

	input := service.EntryFromIngestionInput{
		OwnerID: ownerID,
		Result:  &result,
	}

	if file, header, ferr := c.Request.FormFile("file"); ferr == nil {
		defer func() { _ = file.Close() }()
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			RespondError(c, http.StatusBadRequest, "READ_FAILED", "could not read uploaded file")
			return
		}
		input.FileBytes = data
		input.ContentType = header.Header.Get("Content-Type")
		input.Filename = header.Filename
	}

	entry, err := h.entryService.CreateFromIngestion(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, entry)
}

// List handles GET /api/v1/entries
func (h *EntryHandler) List(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var domainTag domain.LifeDomain
	if raw := c.Query("domain"); raw != "" {
		domainTag = domain.NormalizeLifeDomain(raw)
		if !domain.KnownLifeDomains[domainTag] {
			HandleError(c, domain.ErrInvalidLifeDomain)
			return
		}
	}

	entries, total, err := h.entryService.List(c.Request.Context(), ownerID, domainTag, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/entries/:id
func (h *EntryHandler) GetByID(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid entry ID")
		return
	}

	entry, err := h.entryService.GetByID(c.Request.Context(), ownerID, entryID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, entry)
}

// GetArchiveURL handles GET /api/v1/entries/:id/archive-url. It returns a
// presigned download URL for the archived original upload, when one exists.
func (h *EntryHandler) GetArchiveURL(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid entry ID")
		return
	}

	url, err := h.entryService.ArchiveURL(c.Request.Context(), ownerID, entryID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"archive_url": url})
}

// Update handles PUT /api/v1/entries/:id
func (h *EntryHandler) Update(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid entry ID")
		return
	}

	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	var domainTag domain.LifeDomain
	if req.Domain != "" {
		domainTag = domain.NormalizeLifeDomain(req.Domain)
	}

	entry, err := h.entryService.Update(c.Request.Context(), ownerID, entryID, service.EntryCreateInput{
		Domain:      domainTag,
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, entry)
}

// Delete handles DELETE /api/v1/entries/:id
func (h *EntryHandler) Delete(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid entry ID")
		return
	}

	if err := h.entryService.Delete(c.Request.Context(), ownerID, entryID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "entry deleted"})
}
