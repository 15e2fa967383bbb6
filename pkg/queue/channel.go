package queue

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ChannelEnqueuer publishes jobs on an in-process watermill publisher.
// Each job lands on the topic named by Subject.
type ChannelEnqueuer struct {
	pub message.Publisher
}

// Ensure ChannelEnqueuer implements Enqueuer
var _ Enqueuer = &ChannelEnqueuer{}

func NewChannelEnqueuer(pub message.Publisher) *ChannelEnqueuer {
	return &ChannelEnqueuer{pub: pub}
}

func (e *ChannelEnqueuer) Enqueue(ctx context.Context, queue, job string, payload map[string]interface{}) error {
	data, err := NewJob(queue, job, payload).Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	if err := e.pub.Publish(Subject(queue, job), msg); err != nil {
		return fmt.Errorf("failed to publish job %s: %w", Subject(queue, job), err)
	}
	return nil
}
