package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"carecompanion-be/internal/dto"
	"carecompanion-be/internal/model"
	"carecompanion-be/internal/pkg/logger"
	"carecompanion-be/internal/repository/contract"
	"carecompanion-be/pkg/embedding"
	"carecompanion-be/pkg/events"
	pktNats "carecompanion-be/pkg/nats"
	"carecompanion-be/pkg/utils"
)

// Chunking: 1500 chars (approx 375 tokens) keeps chunks well inside the
// embedding model's context; 200 chars of overlap preserves continuity.
const (
	chunkSize    = 1500
	chunkOverlap = 200
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	repo              contract.KnowledgeRepository
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	repo contract.KnowledgeRepository,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		repo:              repo,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		logger:            log,
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
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("consumer", "indexing knowledge document", map[string]interface{}{
		"document_id": payload.DocumentId,
	})

	doc, err := cs.repo.GetDocument(ctx, payload.DocumentId)
	if err != nil {
		cs.logger.Error("consumer", "failed to load document", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}
	if doc == nil {
		cs.logger.Warn("consumer", "document no longer exists", map[string]interface{}{
			"document_id": payload.DocumentId,
		})
		msg.Ack() // Deleted before we got here? Ack.
		return
	}

	// Embed the title alongside the content so title-only matches work.
	content := fmt.Sprintf("Title: %s\nType: %s\n\n%s", doc.Title, doc.ContentType, doc.Content)

	chunks := utils.SplitText(content, chunkSize, chunkOverlap)

	newEmbeddings := make([]*model.DocumentEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			cs.logger.Error("consumer", "embedding generation failed", map[string]interface{}{
				"document_id": payload.DocumentId,
				"chunk":       i,
				"error":       err.Error(),
			})
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &model.DocumentEmbedding{
			Id:             uuid.New(),
			DocumentId:     doc.Id,
			ChunkIndex:     i,
			Chunk:          chunk,
			EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
			CreatedAt:      time.Now(),
		})
	}

	if err := cs.repo.ReplaceEmbeddings(ctx, doc.Id, newEmbeddings); err != nil {
		cs.logger.Error("consumer", "failed to replace embeddings", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("consumer", "document indexed", map[string]interface{}{
		"document_id": payload.DocumentId,
		"chunks":      len(newEmbeddings),
	})

	if cs.eventPublisher != nil {
		if err := cs.eventPublisher.Publish(ctx, events.NewDocumentIngested(doc.Id.String(), len(newEmbeddings))); err != nil {
			cs.logger.Warn("consumer", "failed to publish event", map[string]interface{}{
				"event": events.TypeDocumentIngested,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
