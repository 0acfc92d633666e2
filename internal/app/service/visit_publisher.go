package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/avelns/shortlinkd/internal/app/model"
)

// VisitPublisher publishes visit events to NATS JetStream.
type VisitPublisher struct {
	js nats.JetStreamContext
}

// NewVisitPublisher creates a new visit event publisher.
func NewVisitPublisher(js nats.JetStreamContext) *VisitPublisher {
	return &VisitPublisher{js: js}
}

// Record publishes a visit event to the stream.
func (p *VisitPublisher) Record(slug, ip, userAgent string) error {
	event := model.VisitEvent{
		ID:        uuid.New().String(),
		Slug:      slug,
		IP:        ip,
		UserAgent: userAgent,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.VisitStreamSubject, data)
	return err
}
