package service

import (
	"context"
	"encoding/json"

	"lms-be/internal/dto"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/repository/specification"
	"lms-be/internal/repository/unitofwork"
	"lms-be/pkg/richtext"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService applies deferred syntax highlighting to saved lessons.
type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	uowFactory  unitofwork.RepositoryFactory
	highlighter richtext.Highlighter
	logger      logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	highlighter richtext.Highlighter,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		uowFactory:  uowFactory,
		highlighter: highlighter,
		logger:      log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ContentSavedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Malformed content message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // redelivery cannot fix it
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	content, err := uow.ContentRepository().FindOne(ctx, specification.ByID{ID: payload.ContentId})
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to load content", map[string]interface{}{
			"content_id": payload.ContentId.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}
	if content == nil {
		// Deleted before we got to it.
		msg.Ack()
		return
	}

	highlighted, err := richtext.HighlightMarkup(content.Body, cs.highlighter)
	if err != nil {
		cs.logger.Warn("CONSUMER", "Content could not be highlighted", map[string]interface{}{
			"content_id": content.Id.String(),
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}
	if content.Highlighted && highlighted == content.Body {
		msg.Ack()
		return
	}

	stored, err := uow.ContentRepository().MarkHighlighted(ctx, content.Id, content.Body, highlighted)
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to store highlighted content", map[string]interface{}{
			"content_id": content.Id.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}
	if !stored {
		// Edited or deleted since load; the newer save publishes its own message.
		cs.logger.Info("CONSUMER", "Content changed before highlighting, skipped", map[string]interface{}{
			"content_id": content.Id.String(),
		})
		msg.Ack()
		return
	}

	cs.logger.Debug("CONSUMER", "Content highlighted", map[string]interface{}{"content_id": content.Id.String()})
	msg.Ack()
}
