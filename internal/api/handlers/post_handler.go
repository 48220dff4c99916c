package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/queue"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type PostHandler struct {
	s        service.ContentService
	p        service.PublishService
	enqueuer queue.Enqueuer
}

func NewPostHandler(s service.ContentService, p service.PublishService, enqueuer queue.Enqueuer) *PostHandler {
	return &PostHandler{s: s, p: p, enqueuer: enqueuer}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var req transfer.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.s.Create(c.Context(), GetOrganizationID(c), GetUserID(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.s.Get(c.Context(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	filter := repository.PostFilter{
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if filter.Offset < 0 {
		return badRequest(c, "offset must not be negative")
	}

	posts, err := h.s.List(c.Context(), GetOrganizationID(c), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	var req transfer.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.s.Update(c.Context(), GetOrganizationID(c), c.Params("id"), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	if err := h.s.Delete(c.Context(), GetOrganizationID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PublishPost publishes synchronously and returns the per-account results.
// With ?async=true the run is queued, optionally for a later publish_at.
func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	postID := c.Params("id")

	if c.QueryBool("async", false) {
		return h.enqueuePublish(c, orgID, postID)
	}

	resp, err := h.p.Publish(c.Context(), orgID, postID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *PostHandler) enqueuePublish(c *fiber.Ctx, orgID, postID string) error {
	var req transfer.PublishAsyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	// Surface a missing post now rather than from the worker.
	if _, err := h.s.Get(c.Context(), orgID, postID); err != nil {
		return writeError(c, err)
	}

	var delay time.Duration
	if req.PublishAt != nil {
		delay = time.Until(*req.PublishAt)
	}

	info, err := queue.EnqueuePublish(h.enqueuer, queue.PublishPostPayload{PostID: postID, OrganizationID: orgID}, delay)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling post",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Post scheduled successfully",
		"task_id": info.ID,
	})
}

func (h *PostHandler) ValidatePost(c *fiber.Ctx) error {
	var req transfer.ValidatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.s.ValidatePost(&req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}
