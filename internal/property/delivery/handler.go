package delivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jindalsaj/aura/internal/property/domain"
	"github.com/jindalsaj/aura/internal/property/repository"
)

type propertyRequest struct {
	Name         string `json:"name" binding:"required"`
	Address      string `json:"address" binding:"required"`
	PropertyType string `json:"property_type"`
}

type PropertyHandler struct {
	propertyRepo repository.PropertyRepository
}

func NewPropertyHandler(propertyRepo repository.PropertyRepository) *PropertyHandler {
	return &PropertyHandler{propertyRepo: propertyRepo}
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property := &domain.Property{
		UserID:       c.GetString("userID"),
		Name:         req.Name,
		Address:      req.Address,
		PropertyType: req.PropertyType,
	}
	if err := h.propertyRepo.Create(property); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandler) List(c *gin.Context) {
	properties, err := h.propertyRepo.GetByUser(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

func (h *PropertyHandler) Get(c *gin.Context) {
	property, err := h.propertyRepo.GetByID(c.GetString("userID"), c.Param("id"))
	if errors.Is(err, repository.ErrPropertyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) Update(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property := &domain.Property{
		ID:           c.Param("id"),
		UserID:       c.GetString("userID"),
		Name:         req.Name,
		Address:      req.Address,
		PropertyType: req.PropertyType,
	}
	err := h.propertyRepo.Update(property)
	if errors.Is(err, repository.ErrPropertyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	err := h.propertyRepo.Delete(c.GetString("userID"), c.Param("id"))
	if errors.Is(err, repository.ErrPropertyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "property deleted"})
}
