package queue

import (
	"log/slog"

	"github.com/maheshrc27/contentflow/internal/service"
)

type Queue struct {
	log       *slog.Logger
	publisher service.PublishService
}

func NewQueue(log *slog.Logger, publisher service.PublishService) *Queue {
	return &Queue{
		log:       log,
		publisher: publisher,
	}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID         string `json:"post_id"`
	OrganizationID string `json:"organization_id"`
}
