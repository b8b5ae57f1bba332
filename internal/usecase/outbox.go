package usecase

import (
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// OutboxChannel — канал LISTEN/NOTIFY, которым outbox будит воркер.
const OutboxChannel = "outbox_pending"

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	ProjectCreated OutboxEventType = "project.created"
	ProjectUpdated OutboxEventType = "project.updated"
	ProjectDeleted OutboxEventType = "project.deleted"
	AssetCreated   OutboxEventType = "asset.created"
	AssetUpdated   OutboxEventType = "asset.updated"
	AssetDeleted   OutboxEventType = "asset.deleted"
)

// OutboxEvent — событие изменения каталога, которое воркер отправит в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID string // id проекта или ассета, он же ключ сообщения в Kafka
	Payload     []byte // protobuf google.protobuf.Struct
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

// NewOutboxEvent формирует событие со статусом Pending.
func NewOutboxEvent(eventType OutboxEventType, aggregateID string, fields map[string]any) (*OutboxEvent, error) {
	eventID := uuid.NewString()
	now := time.Now().UTC()

	body := map[string]any{
		"event_id":     eventID,
		"event_type":   string(eventType),
		"aggregate_id": aggregateID,
		"occurred_at":  now.Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		body[k] = v
	}

	st, err := structpb.NewStruct(body)
	if err != nil {
		return nil, err
	}

	payload, err := proto.Marshal(st)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   now,
	}, nil
}

func projectEventFields(project *domain.Project) map[string]any {
	return map[string]any{
		"name":          project.Name,
		"keywords":      project.Metadata.Keywords,
		"emotion":       project.Metadata.Emotion,
		"look_and_feel": project.Metadata.LookAndFeel,
	}
}

func assetEventFields(asset *domain.Asset) map[string]any {
	tags := make([]any, 0, len(asset.Tags))
	for _, t := range asset.Tags {
		tags = append(tags, t)
	}

	return map[string]any{
		"project_id":    asset.ProjectID,
		"filename":      asset.Filename,
		"file_url":      asset.FileURL,
		"keywords":      asset.Metadata.Keywords,
		"emotion":       asset.Metadata.Emotion,
		"look_and_feel": asset.Metadata.LookAndFeel,
		"tags":          tags,
	}
}
