package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/service"
	"github.com/noah-isme/fefu-courses/pkg/response"
)

const (
	titleFeedback   = "Обратная связь"
	msgFeedbackSent = "Спасибо за ваш отзыв! Мы свяжемся с вами в ближайшее время."
)

type feedbackService interface {
	Submit(ctx context.Context, req service.FeedbackRequest) (*models.FeedbackMessage, error)
	List(ctx context.Context, page, pageSize int) ([]models.FeedbackMessage, *models.Pagination, error)
}

// FeedbackHandler serves the feedback form and the feedback inbox endpoint.
type FeedbackHandler struct {
	feedback feedbackService
}

// NewFeedbackHandler constructs FeedbackHandler.
func NewFeedbackHandler(feedback feedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// Form renders an empty feedback form.
func (h *FeedbackHandler) Form(c *gin.Context) {
	data := pageData(c, titleFeedback)
	data["Form"] = service.FeedbackRequest{}
	render(c, http.StatusOK, "feedback.html", data)
}

// Submit stores the message or re-renders the form with errors.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req service.FeedbackRequest
	_ = c.ShouldBind(&req)

	if _, err := h.feedback.Submit(c.Request.Context(), req); err != nil {
		data := pageData(c, titleFeedback)
		data["Form"] = req
		data["Errors"] = formErrors(err)
		render(c, appErrorStatus(err), "feedback.html", data)
		return
	}
	renderSuccess(c, titleFeedback, msgFeedbackSent)
}

// List godoc
// @Summary List feedback messages
// @Tags Feedback
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	messages, pagination, err := h.feedback.List(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, pagination)
}
