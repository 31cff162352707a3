// handlers_chat.go - Chat handler
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ChatHandlerImpl implements the ChatHandler interface
type ChatHandlerImpl struct {
	answerer Answerer
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(answerer Answerer, logger *zap.Logger) ChatHandler {
	return &ChatHandlerImpl{answerer: answerer, logger: logger}
}

// HandleChat answers {"message"} with {"response", "sources"}
func (h *ChatHandlerImpl) HandleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	answer, err := h.answerer.Ask(c.Request().Context(), req.Message)
	if err != nil {
		h.logger.Error("chat failed", zap.Error(err))
		return NewInternalError("failed to answer", err)
	}

	return c.JSON(http.StatusOK, answer)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (r *chatRequest) validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return NewValidationError("message")
	}
	return nil
}
