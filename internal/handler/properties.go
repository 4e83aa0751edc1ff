package handler

import (
	"net/http"
	"strconv"

	"proptrust/internal/apierror"
	"proptrust/internal/dto"
	"proptrust/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PropertiesHandler struct{ svc service.PropertyService }

func NewPropertiesHandler(svc service.PropertyService) *PropertiesHandler {
	return &PropertiesHandler{svc: svc}
}

// Create godoc
// @Summary Register a property stand
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreatePropertyRequest true "Property data"
// @Success 201 {object} dto.PropertyResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/properties [post]
func (h *PropertiesHandler) Create(c *gin.Context) {
	var req dto.CreatePropertyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Get a property by ID
// @Tags properties
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Success 200 {object} dto.PropertyResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/properties/{id} [get]
func (h *PropertiesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary List active properties
// @Tags properties
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Success 200 {object} dto.PropertyListResponse
// @Router /v1/properties [get]
func (h *PropertiesHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list properties"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
