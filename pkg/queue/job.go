package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Background queues fed by the generation loop.
const (
	QueueAIUsage        = "ai-usage"
	JobRecordUsage      = "record_usage"
	QueueAIInteractions = "ai-interactions"
	JobLogInteraction   = "log_interaction"
)

// Enqueuer hands a job to a background worker. Callers do not wait for the job to run.
type Enqueuer interface {
	Enqueue(ctx context.Context, queue, job string, payload map[string]interface{}) error
}

// Job is the envelope every transport carries on the wire.
type Job struct {
	Queue      string                 `json:"queue"`
	Name       string                 `json:"name"`
	Payload    map[string]interface{} `json:"payload"`
	EnqueuedAt time.Time              `json:"enqueuedAt"`
}

func NewJob(queue, job string, payload map[string]interface{}) Job {
	return Job{Queue: queue, Name: job, Payload: payload, EnqueuedAt: time.Now().UTC()}
}

// Subject is the routing key for a job, e.g. "jobs.ai-usage.record_usage".
func Subject(queue, job string) string {
	return fmt.Sprintf("jobs.%s.%s", queue, job)
}

func (j Job) Marshal() ([]byte, error) {
	return json.Marshal(j)
}

func Unmarshal(data []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return Job{}, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return j, nil
}

// NopEnqueuer drops every job.
type NopEnqueuer struct{}

func (NopEnqueuer) Enqueue(context.Context, string, string, map[string]interface{}) error {
	return nil
}
