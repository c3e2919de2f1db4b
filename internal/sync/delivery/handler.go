package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
	syncdto "github.com/jindalsaj/aura/internal/sync/dto"
	"github.com/jindalsaj/aura/internal/sync/usecase"
)

type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
}

func NewSyncHandler(syncUsecase usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{syncUsecase: syncUsecase}
}

// TriggerAll starts a sync of every connected source. Returns 202
// immediately; progress is polled through GetStatus.
func (h *SyncHandler) TriggerAll(c *gin.Context) {
	var req syncdto.TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	_, err := h.syncUsecase.SyncAll(c.Request.Context(), userID, req.Selector())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "sync started"})
}

// TriggerSource starts a sync of one source.
func (h *SyncHandler) TriggerSource(c *gin.Context) {
	sourceType := sourcedomain.SourceType(c.Param("source"))
	if !sourceType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source"})
		return
	}

	var req syncdto.TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	_, err := h.syncUsecase.TriggerSync(c.Request.Context(), userID, sourceType, req.Selector())
	switch err {
	case nil:
		c.JSON(http.StatusAccepted, gin.H{"message": "sync started", "source": sourceType})
	case syncdomain.ErrAlreadySyncing:
		c.JSON(http.StatusConflict, gin.H{"error": "sync already in progress"})
	case sourcedomain.ErrNotConnected:
		c.JSON(http.StatusBadRequest, gin.H{"error": "source not connected"})
	case syncdomain.ErrUnknownSource:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *SyncHandler) GetStatus(c *gin.Context) {
	userID := c.GetString("userID")
	status, err := h.syncUsecase.GetSyncStatus(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}
