package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type PlatformHandler struct {
	content     service.ContentService
	connections service.ConnectionService
}

func NewPlatformHandler(content service.ContentService, connections service.ConnectionService) *PlatformHandler {
	return &PlatformHandler{content: content, connections: connections}
}

func (h *PlatformHandler) PlatformSpecs(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.content.GetPlatformSpecs())
}

func (h *PlatformHandler) ListConnections(c *fiber.Ctx) error {
	conns, err := h.connections.List(c.Context(), GetOrganizationID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(conns)
}

func (h *PlatformHandler) Connect(c *fiber.Ctx) error {
	var req transfer.ConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	conn, err := h.connections.Connect(c.Context(), GetOrganizationID(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

func (h *PlatformHandler) Disconnect(c *fiber.Ctx) error {
	if err := h.connections.Disconnect(c.Context(), GetOrganizationID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
