package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/contentflow/internal/service"
)

func (q *Queue) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypePublishPost, q.HandlePublishPostTask)
}

// HandlePublishPostTask runs the publish orchestrator for a queued post.
// Guard failures such as a missing or already published post are not retried.
func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	resp, err := q.publisher.Publish(ctx, payload.OrganizationID, payload.PostID)
	if err != nil {
		if service.IsPublishGuardError(err) {
			q.log.Warn("publish task skipped", "post_id", payload.PostID, "error", err.Error())
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		q.log.Error("publish task failed", "post_id", payload.PostID, "error", err.Error())
		return err
	}

	q.log.Info("publish task finished", "post_id", payload.PostID, "status", resp.Status)
	return nil
}
