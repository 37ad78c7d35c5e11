package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightclass/aigateway/internal/auth"
	"github.com/brightclass/aigateway/internal/content"
	"github.com/brightclass/aigateway/internal/llm"
	"github.com/brightclass/aigateway/internal/tutor"
)

// TutorHandler exposes the turn-based invocation surface.
type TutorHandler struct {
	service *tutor.Service
	logger  *slog.Logger
}

// NewTutorHandler creates a TutorHandler.
func NewTutorHandler(log *slog.Logger, service *tutor.Service) *TutorHandler {
	return &TutorHandler{
		service: service,
		logger:  log.With(slog.String("handler", "tutor")),
	}
}

func (h *TutorHandler) Register(e *echo.Echo) {
	group := e.Group("/api/tutor")
	group.POST("/ask", h.Ask)
	group.DELETE("/conversations/:id", h.Forget)
	group.DELETE("/conversations", h.ForgetAll)
}

type askRequest struct {
	ConversationID    string              `json:"conversation_id" validate:"required"`
	Question          string              `json:"question" validate:"required"`
	SystemInstruction string              `json:"system_instruction"`
	Files             []content.Reference `json:"files" validate:"dive"`
	Action            string              `json:"action"`
}

type askResponse struct {
	Answer string     `json:"answer"`
	Usage  *llm.Usage `json:"usage,omitempty"`
}

// Ask submits one question against the caller's conversation.
func (h *TutorHandler) Ask(c echo.Context) error {
	tenantID, err := auth.TenantIDFromContext(c)
	if err != nil {
		return err
	}

	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	answer, err := h.service.Ask(c.Request().Context(), tutor.AskInput{
		TenantID:       tenantID,
		ConversationID: req.ConversationID,
		System:         req.SystemInstruction,
		References:     req.Files,
		Question:       req.Question,
		Action:         req.Action,
	})
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, askResponse{Answer: answer.Text, Usage: answer.Usage})
}

// Forget evicts one conversation.
func (h *TutorHandler) Forget(c echo.Context) error {
	tenantID, err := auth.TenantIDFromContext(c)
	if err != nil {
		return err
	}
	conversationID := c.Param("id")
	if conversationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation id is required")
	}
	h.service.Forget(tenantID, conversationID)
	return c.NoContent(http.StatusNoContent)
}

// ForgetAll evicts every conversation for the caller's tenant.
func (h *TutorHandler) ForgetAll(c echo.Context) error {
	tenantID, err := auth.TenantIDFromContext(c)
	if err != nil {
		return err
	}
	removed := h.service.ForgetTenant(tenantID)
	return c.JSON(http.StatusOK, map[string]int{"removed": removed})
}

func (h *TutorHandler) mapError(c echo.Context, err error) error {
	var contentErr *tutor.ContentError
	if errors.As(err, &contentErr) {
		h.logger.Warn("content resolution failed",
			slog.String("locator", contentErr.Locator),
			slog.Any("error", err))
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: contentErr.Error()})
	}
	var invErr *tutor.InvocationError
	if errors.As(err, &invErr) {
		h.logger.Error("model invocation failed",
			slog.String("action", invErr.Action),
			slog.Any("error", err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: invErr.Error()})
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
