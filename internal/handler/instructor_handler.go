package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/service"
	"github.com/noah-isme/fefu-courses/pkg/response"
)

type instructorService interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Instructor, error)
	Create(ctx context.Context, req service.CreateInstructorRequest) (*models.Instructor, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// InstructorHandler exposes instructor endpoints.
type InstructorHandler struct {
	instructors instructorService
}

// NewInstructorHandler constructs InstructorHandler.
func NewInstructorHandler(instructors instructorService) *InstructorHandler {
	return &InstructorHandler{instructors: instructors}
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// List godoc
// @Summary List instructors
// @Tags Instructors
// @Produce json
// @Param search query string false "Search by name or email"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) List(c *gin.Context) {
	filter := models.InstructorFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Active:   queryBool(c, "active"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 20),
	}
	instructors, pagination, err := h.instructors.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, pagination)
}

// Get godoc
// @Summary Get instructor
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	instructor, err := h.instructors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}

// Create godoc
// @Summary Create instructor
// @Tags Instructors
// @Accept json
// @Produce json
// @Param payload body service.CreateInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructors [post]
func (h *InstructorHandler) Create(c *gin.Context) {
	var req service.CreateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	instructor, err := h.instructors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}

// SetActive godoc
// @Summary Activate or deactivate instructor
// @Tags Instructors
// @Accept json
// @Param id path string true "Instructor ID"
// @Param payload body setActiveRequest true "Active flag"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id}/active [patch]
func (h *InstructorHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		invalidPayload(c, err)
		return
	}
	if err := h.instructors.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
