package service

import (
	"encoding/json"

	"askdb-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// PublishIndexSchemaMessage is the payload queued for the indexer.
type PublishIndexSchemaMessage struct {
	TableName string                 `json:"table_name"`
	Document  string                 `json:"document"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type IPublisherService interface {
	PublishIndexSchema(request *dto.IndexSchemaRequest) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishIndexSchema(request *dto.IndexSchemaRequest) error {
	payload := PublishIndexSchemaMessage{
		TableName: request.TableName,
		Document:  request.Document,
		Metadata:  request.Metadata,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payloadBytes)
	return ps.pubSub.Publish(ps.topicName, msg)
}
