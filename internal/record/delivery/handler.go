package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jindalsaj/aura/internal/record/repository"
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
)

type RecordHandler struct {
	recordRepo repository.RecordRepository
}

func NewRecordHandler(recordRepo repository.RecordRepository) *RecordHandler {
	return &RecordHandler{recordRepo: recordRepo}
}

// List returns stored records, newest first. Filterable by source and kind.
func (h *RecordHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	sourceType := sourcedomain.SourceType(c.Query("source"))
	if sourceType != "" && !sourceType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source"})
		return
	}
	kind := c.Query("kind")

	limit := 50
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	records, err := h.recordRepo.GetByUser(userID, sourceType, kind, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	total, err := h.recordRepo.CountByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"limit":   limit,
		"offset":  offset,
		"total":   total,
	})
}

// Counts reports how many records each source has contributed.
func (h *RecordHandler) Counts(c *gin.Context) {
	userID := c.GetString("userID")

	counts, err := h.recordRepo.CountBySource(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make(map[sourcedomain.SourceType]int64, len(sourcedomain.AllSourceTypes))
	var total int64
	for _, sourceType := range sourcedomain.AllSourceTypes {
		out[sourceType] = counts[sourceType]
		total += counts[sourceType]
	}

	c.JSON(http.StatusOK, gin.H{
		"counts": out,
		"total":  total,
	})
}
