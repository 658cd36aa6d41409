package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"research-tutor-be/internal/dto"
	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/pkg/events"
	pktNats "research-tutor-be/pkg/nats"
	"research-tutor-be/pkg/rag"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the reindex queue and runs corpus rebuilds one at a
// time. Builds are serialized by the single consumer loop, so two overlapping
// reindex requests just produce two sequential builds.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	indexer        *rag.Indexer
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	indexer *rag.Indexer,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		indexer:        indexer,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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
	var payload dto.ReindexCorpusMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal reindex message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages must not retry forever
		return
	}

	cs.logger.Info("consumer", "Starting corpus rebuild", map[string]interface{}{
		"requested_at": payload.RequestedAt,
	})

	build, err := cs.indexer.BuildIndex(ctx)
	if err != nil {
		cs.logger.Error("consumer", "Corpus rebuild failed", map[string]interface{}{"error": err.Error()})
		// The failure is recorded on the build row; retrying the same message
		// would just repeat it against the same corpus.
		msg.Ack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type:       events.TypeIndexRebuilt,
			OccurredAt: time.Now(),
			Data: map[string]interface{}{
				"build_id":  build.Id.String(),
				"documents": build.DocumentCount,
				"chunks":    build.ChunkCount,
			},
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("consumer", "Failed to publish index event", map[string]interface{}{"error": err.Error()})
		}
	}

	msg.Ack()
}
