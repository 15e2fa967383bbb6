package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/mapper"
	"ai-support-be/internal/pkg/logger"
	"ai-support-be/internal/repository/unitofwork"
	"ai-support-be/pkg/queue"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IInteractionConsumerService interface {
	// Consume starts reading jobs from the in-process bus.
	Consume(ctx context.Context) error
	// HandleJob processes one job from any transport. A returned error asks for redelivery.
	HandleJob(ctx context.Context, job queue.Job) error
}

type interactionConsumerService struct {
	subscriber message.Subscriber
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.SupportMapper
	logger     logger.ILogger // isolated ai_interactions.log
}

func NewInteractionConsumerService(
	subscriber message.Subscriber,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IInteractionConsumerService {
	return &interactionConsumerService{
		subscriber: subscriber,
		uowFactory: uowFactory,
		mapper:     mapper.NewSupportMapper(),
		logger:     log,
	}
}

func (cs *interactionConsumerService) Consume(ctx context.Context) error {
	topics := []string{
		queue.Subject(queue.QueueAIInteractions, queue.JobLogInteraction),
		queue.Subject(queue.QueueAIUsage, queue.JobRecordUsage),
	}
	for _, topic := range topics {
		messages, err := cs.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go func() {
			for msg := range messages {
				cs.processMessage(ctx, msg)
			}
		}()
	}
	return nil
}

func (cs *interactionConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	job, err := queue.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error(logger.ModuleQueue, "Dropping malformed job", map[string]interface{}{
			"messageId": msg.UUID,
			"error":     err.Error(),
		})
		msg.Ack() // redelivery cannot fix a bad payload
		return
	}

	// gochannel redelivers a Nack immediately, so a failed job is logged and dropped here.
	if err := cs.HandleJob(ctx, job); err != nil {
		cs.logger.Warn(logger.ModuleQueue, "Job failed on in-process bus, dropping", map[string]interface{}{
			"job":   job.Name,
			"error": err.Error(),
		})
	}
	msg.Ack()
}

func (cs *interactionConsumerService) HandleJob(ctx context.Context, job queue.Job) error {
	switch job.Name {
	case queue.JobLogInteraction:
		return cs.logInteraction(ctx, job)
	case queue.JobRecordUsage:
		cs.logger.Info(logger.ModuleQueue, "AI usage", job.Payload)
		return nil
	default:
		cs.logger.Warn(logger.ModuleQueue, "Unknown job", map[string]interface{}{
			"queue": job.Queue,
			"job":   job.Name,
		})
		return nil
	}
}

func (cs *interactionConsumerService) logInteraction(ctx context.Context, job queue.Job) error {
	raw, err := json.Marshal(job.Payload)
	if err != nil {
		return err
	}
	var payload dto.InteractionJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		cs.logger.Error(logger.ModuleQueue, "Invalid interaction payload", map[string]interface{}{"error": err.Error()})
		return nil
	}

	entry, err := cs.mapper.ToInteractionLog(&payload)
	if err != nil {
		cs.logger.Error(logger.ModuleQueue, "Invalid interaction company id", map[string]interface{}{
			"companyId": payload.CompanyId,
		})
		return nil
	}
	entry.CreatedAt = job.EnqueuedAt

	cs.logger.Info(logger.ModuleGeneration, "AI interaction", job.Payload)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AiInteractionRepository().Create(ctx, entry); err != nil {
		cs.logger.Error(logger.ModuleQueue, "Failed to persist interaction", map[string]interface{}{
			"companyId": payload.CompanyId,
			"error":     err.Error(),
		})
		return err
	}
	return nil
}
