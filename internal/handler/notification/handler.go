package notification

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/petmatch-api/internal/handler"
	"github.com/jwalitptl/petmatch-api/internal/service/feed"
	"github.com/jwalitptl/petmatch-api/internal/service/notification"
	"github.com/jwalitptl/petmatch-api/pkg/validator"
)

type Handler struct {
	service   notification.Service
	feed      *feed.Feed
	validator validator.Validator
}

func NewHandler(service notification.Service, feed *feed.Feed, validator validator.Validator) *Handler {
	return &Handler{
		service:   service,
		feed:      feed,
		validator: validator,
	}
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
		limit = parsed
	}

	notifications, err := h.service.List(c.Request.Context(), userID, limit)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(notifications))
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid notification ID"))
		return
	}

	notification, err := h.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(notification))
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"updated": updated}))
}

type messageNotificationRequest struct {
	RecipientID    uuid.UUID `json:"recipient_id" validate:"required"`
	ConversationID uuid.UUID `json:"conversation_id" validate:"required"`
}

// NotifyMessage is called by the messaging flow after a message lands.
// The recipient only learns that the conversation has activity.
func (h *Handler) NotifyMessage(c *gin.Context) {
	senderID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req messageNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	notification, err := h.service.CreateMessage(c.Request.Context(), req.RecipientID, senderID, req.ConversationID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(notification))
}

// Stream pushes feed events to the client over SSE until it
// disconnects.
func (h *Handler) Stream(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	sub := h.feed.Subscribe(c.Request.Context(), userID)
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, open := <-sub.Events():
			if !open {
				return false
			}
			c.SSEvent(string(event.Kind), event)
			return true
		}
	})
}

func (h *Handler) Cleanup(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	result, err := h.service.CleanupDuplicates(c.Request.Context(), userID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) ListInvalid(c *gin.Context) {
	invalid, err := h.service.FindInvalid(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(invalid))
}

type deleteInvalidRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

func (h *Handler) DeleteInvalid(c *gin.Context) {
	var req deleteInvalidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result := h.service.DeleteInvalid(c.Request.Context(), req.IDs)
	if !result.Success {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(result.Error))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
