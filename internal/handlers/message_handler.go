package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/connect-service/internal/apperr"
	"github.com/fathima-sithara/connect-service/internal/chat"
	"github.com/fathima-sithara/connect-service/internal/repository"
)

type MessageHandler struct {
	chat  *chat.Service
	users repository.UserRepository
}

func NewMessageHandler(chatSvc *chat.Service, users repository.UserRepository) *MessageHandler {
	return &MessageHandler{chat: chatSvc, users: users}
}

// POST /api/messages
// The REST path persists only; realtime fan-out belongs to the delivery
// router. Authorization is the same code path either way.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var req struct {
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.ReceiverID == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Receiver and content are required"})
	}
	msg, err := h.chat.Send(c.Context(), currentUser(c), req.ReceiverID, req.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GET /api/messages/conversations
func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	convs, err := h.chat.Conversations(c.Context(), currentUser(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(convs)
}

// GET /api/messages/:userId
func (h *MessageHandler) History(c *fiber.Ctx) error {
	msgs, err := h.chat.History(c.Context(), currentUser(c), c.Params("userId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(msgs)
}

// PUT /api/messages/read/:userId
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.chat.MarkRead(c.Context(), currentUser(c), c.Params("userId")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Messages marked as read"})
}

func (h *MessageHandler) fail(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, apperr.ErrForbidden):
		msg = "You can only message connected users"
	case errors.Is(err, apperr.ErrNotFound):
		msg = "Receiver not found"
	case errors.Is(err, apperr.ErrValidation):
		msg = "Receiver and content are required"
	}
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": msg})
}
