package service

import (
	"context"
	"encoding/json"
	"time"

	"askdb-be/internal/pkg/logger"
	"askdb-be/pkg/embedding"
	"askdb-be/pkg/rag/retrieve"
	"askdb-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/datatypes"
)

// IIndexerService consumes schema-doc submissions, embeds them and upserts
// them into the vector index. Runs as a background worker.
type IIndexerService interface {
	Consume(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

type indexerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	embeddingProvider embedding.EmbeddingProvider
	store             *vectorstore.Store
	log               logger.ILogger
	embedTimeout      time.Duration
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	embeddingProvider embedding.EmbeddingProvider,
	store *vectorstore.Store,
	log logger.ILogger,
	embedTimeout time.Duration,
) IIndexerService {
	return &indexerService{
		pubSub:            pubSub,
		topicName:         topicName,
		embeddingProvider: embeddingProvider,
		store:             store,
		log:               log,
		embedTimeout:      embedTimeout,
	}
}

func (is *indexerService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *indexerService) Count(ctx context.Context) (int64, error) {
	collection, err := is.store.GetOrCreateCollection(ctx, retrieve.CollectionName)
	if err != nil {
		return 0, err
	}
	return collection.Count(ctx)
}

func (is *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload PublishIndexSchemaMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		is.log.Error("indexer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	is.log.Info("indexer", "indexing schema document", map[string]interface{}{
		"table": payload.TableName,
	})

	collection, err := is.store.GetOrCreateCollection(ctx, retrieve.CollectionName)
	if err != nil {
		is.log.Error("indexer", "failed to open collection", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	embedCtx, cancel := context.WithTimeout(ctx, is.embedTimeout)
	embeddingRes, err := is.embeddingProvider.Generate(embedCtx, payload.Document, "RETRIEVAL_DOCUMENT")
	cancel()
	if err != nil {
		is.log.Error("indexer", "failed to embed document", map[string]interface{}{
			"table": payload.TableName,
			"error": err.Error(),
		})
		msg.Nack()
		return
	}

	var metadata datatypes.JSON
	if payload.Metadata != nil {
		if b, err := json.Marshal(payload.Metadata); err == nil {
			metadata = datatypes.JSON(b)
		}
	}

	if err := collection.Upsert(ctx, payload.TableName, payload.Document, metadata, embeddingRes.Embedding.Values); err != nil {
		is.log.Error("indexer", "failed to upsert document", map[string]interface{}{
			"table": payload.TableName,
			"error": err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
