package queue

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewPublishTask(payload PublishPostPayload) (*asynq.Task, error) {
	if payload.PostID == "" || payload.OrganizationID == "" {
		return nil, errors.New("post id and organization id are required")
	}
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePublishPost, taskPayload, asynq.MaxRetry(3)), nil
}

// EnqueuePublish schedules a publish run after delay; a non-positive delay
// runs it as soon as a worker is free.
func EnqueuePublish(client Enqueuer, payload PublishPostPayload, delay time.Duration) (*asynq.TaskInfo, error) {
	task, err := NewPublishTask(payload)
	if err != nil {
		return nil, err
	}

	var opts []asynq.Option
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	info, err := client.Enqueue(task, opts...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	slog.Info("publish task scheduled", "task_id", info.ID, "post_id", payload.PostID, "delay", delay.String())
	return info, nil
}
