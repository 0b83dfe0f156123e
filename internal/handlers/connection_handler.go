package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/connect-service/internal/apperr"
	"github.com/fathima-sithara/connect-service/internal/connections"
	"github.com/fathima-sithara/connect-service/internal/repository"
)

type ConnectionHandler struct {
	graph *connections.Service
	users repository.UserRepository
}

func NewConnectionHandler(graph *connections.Service, users repository.UserRepository) *ConnectionHandler {
	return &ConnectionHandler{graph: graph, users: users}
}

func currentUser(c *fiber.Ctx) string {
	uid, _ := c.Locals("user_id").(string)
	return uid
}

func fail(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, apperr.ErrSelfConnection):
		msg = "Cannot connect with yourself"
	case errors.Is(err, apperr.ErrAlreadyExists):
		msg = "Connection request already exists"
	case errors.Is(err, apperr.ErrNotFound):
		msg = "Not found"
	}
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": msg})
}

// POST /api/users/connect/:userId
func (h *ConnectionHandler) Request(c *fiber.Ctx) error {
	if err := h.graph.Request(c.Context(), currentUser(c), c.Params("userId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Connection request sent"})
}

// PUT /api/users/accept/:userId
func (h *ConnectionHandler) Accept(c *fiber.Ctx) error {
	if err := h.graph.Accept(c.Context(), currentUser(c), c.Params("userId")); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Connection request not found"})
		}
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Connection accepted"})
}

// PUT /api/users/reject/:userId
func (h *ConnectionHandler) Reject(c *fiber.Ctx) error {
	if err := h.graph.Reject(c.Context(), currentUser(c), c.Params("userId")); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Connection request not found"})
		}
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Connection rejected"})
}

// GET /api/users/requests
func (h *ConnectionHandler) PendingRequests(c *fiber.Ctx) error {
	users, err := h.graph.PendingRequesters(c.Context(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

// GET /api/users/:id
func (h *ConnectionHandler) GetUser(c *fiber.Ctx) error {
	u, err := h.users.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return fail(c, err)
	}
	return c.JSON(u)
}

// GET /api/users?search=
func (h *ConnectionHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.graph.ListWithStatus(c.Context(), currentUser(c), c.Query("search"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}
