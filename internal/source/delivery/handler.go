package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/internal/source/usecase"
	"github.com/jindalsaj/aura/pkg/googleauth"
	"github.com/jindalsaj/aura/pkg/plaid"
)

type connectGoogleRequest struct {
	Code string `json:"code" binding:"required"`
}

type connectBankRequest struct {
	PublicToken string `json:"public_token" binding:"required"`
}

type connectWhatsAppRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

type SourceHandler struct {
	credUsecase usecase.CredentialUsecase
	google      *googleauth.Service
	plaid       *plaid.Client
}

func NewSourceHandler(credUsecase usecase.CredentialUsecase, google *googleauth.Service, plaidClient *plaid.Client) *SourceHandler {
	return &SourceHandler{
		credUsecase: credUsecase,
		google:      google,
		plaid:       plaidClient,
	}
}

// ListConnections returns connection status per source, tokens excluded.
func (h *SourceHandler) ListConnections(c *gin.Context) {
	userID := c.GetString("userID")
	connections, err := h.credUsecase.ListConnections(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	connected := make(map[domain.SourceType]domain.Credential, len(connections))
	for _, conn := range connections {
		connected[conn.SourceType] = conn
	}

	type entry struct {
		SourceType domain.SourceType `json:"source_type"`
		Connected  bool              `json:"connected"`
		Active     bool              `json:"active"`
	}
	out := make([]entry, 0, len(domain.AllSourceTypes))
	for _, sourceType := range domain.AllSourceTypes {
		e := entry{SourceType: sourceType}
		if conn, ok := connected[sourceType]; ok {
			e.Connected = true
			e.Active = conn.Active
		}
		out = append(out, e)
	}

	c.JSON(http.StatusOK, gin.H{"sources": out})
}

// GoogleAuthURL hands the frontend the consent URL for connecting Google
// sources.
func (h *SourceHandler) GoogleAuthURL(c *gin.Context) {
	state := uuid.NewString()
	c.JSON(http.StatusOK, gin.H{
		"url":   h.google.AuthURL(state),
		"state": state,
	})
}

func (h *SourceHandler) ConnectGoogle(c *gin.Context) {
	var req connectGoogleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	identity, err := h.credUsecase.ConnectGoogle(c.Request.Context(), userID, req.Code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "google sources connected",
		"identity": identity,
	})
}

// CreateBankLinkToken starts the Plaid Link flow.
func (h *SourceHandler) CreateBankLinkToken(c *gin.Context) {
	userID := c.GetString("userID")
	linkToken, err := h.plaid.CreateLinkToken(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"link_token": linkToken})
}

func (h *SourceHandler) ConnectBank(c *gin.Context) {
	var req connectBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	if err := h.credUsecase.ConnectBank(c.Request.Context(), userID, req.PublicToken); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "bank connected"})
}

func (h *SourceHandler) ConnectWhatsApp(c *gin.Context) {
	var req connectWhatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	if err := h.credUsecase.ConnectWhatsApp(c.Request.Context(), userID, req.AccessToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "whatsapp connected"})
}

// Toggle flips a connected source between paused and active. The credential
// stays stored, so resuming does not require re-authentication.
func (h *SourceHandler) Toggle(c *gin.Context) {
	sourceType := domain.SourceType(c.Param("source"))
	if !sourceType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source"})
		return
	}

	userID := c.GetString("userID")
	active, err := h.credUsecase.Toggle(userID, sourceType)
	if err != nil {
		if err == domain.ErrNotConnected {
			c.JSON(http.StatusNotFound, gin.H{"error": "source not connected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"source": sourceType, "active": active})
}

func (h *SourceHandler) Disconnect(c *gin.Context) {
	sourceType := domain.SourceType(c.Param("source"))
	if !sourceType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source"})
		return
	}

	userID := c.GetString("userID")
	if err := h.credUsecase.Disconnect(userID, sourceType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "disconnected"})
}
