package match

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/petmatch-api/internal/handler"
	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/service/match"
	"github.com/jwalitptl/petmatch-api/pkg/validator"
)

type Handler struct {
	service   match.Service
	sessions  *match.Manager
	validator validator.Validator
}

func NewHandler(service match.Service, sessions *match.Manager, validator validator.Validator) *Handler {
	return &Handler{
		service:   service,
		sessions:  sessions,
		validator: validator,
	}
}

func (h *Handler) ListOwnPets(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	pets, err := h.service.OwnedPets(c.Request.Context(), userID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(pets))
}

// ListCandidates returns the swipe queue for one of the caller's pets
// without opening a session. The discover page uses it for browsing.
func (h *Handler) ListCandidates(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	petID, err := uuid.Parse(c.Query("pet_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid pet_id"))
		return
	}

	pet, err := h.service.Pet(c.Request.Context(), petID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if pet.OwnerID != userID {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not your pet"))
		return
	}

	candidates, err := h.service.Candidates(c.Request.Context(), userID, pet)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(candidates))
}

type showInterestRequest struct {
	PetID uuid.UUID `json:"pet_id" validate:"required"`
}

// ShowInterest sends an interest notification to the pet's owner.
func (h *Handler) ShowInterest(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req showInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ShowInterest(c.Request.Context(), userID, req.PetID); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(nil))
}

type startSessionRequest struct {
	PetID uuid.UUID `json:"pet_id" validate:"required"`
}

type sessionView struct {
	State       match.SessionState `json:"state"`
	SwipingWith *model.Pet         `json:"swiping_with"`
	Candidate   *model.Pet         `json:"candidate,omitempty"`
}

func viewOf(session *match.Session) sessionView {
	candidate, state := session.Current()
	return sessionView{
		State:       state,
		SwipingWith: session.SwipingWith(),
		Candidate:   candidate,
	}
}

// StartSession opens a swipe session for one of the caller's pets,
// replacing any session already running.
func (h *Handler) StartSession(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	pet, err := h.service.Pet(c.Request.Context(), req.PetID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if pet.OwnerID != userID {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not your pet"))
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), userID, pet)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(viewOf(session)))
}

func (h *Handler) CurrentSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(viewOf(session)))
}

func (h *Handler) Like(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	result, err := session.Like(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"result":  result,
		"session": viewOf(session),
	}))
}

func (h *Handler) Dislike(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.Dislike(c.Request.Context()); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(viewOf(session)))
}

func (h *Handler) Acknowledge(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.AcknowledgeIncompatible(); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(viewOf(session)))
}

func (h *Handler) Refresh(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.Refresh(c.Request.Context()); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(viewOf(session)))
}

func (h *Handler) session(c *gin.Context) (*match.Session, bool) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return nil, false
	}

	session, found := h.sessions.Get(userID)
	if !found {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("no active session"))
		return nil, false
	}
	return session, true
}
