package model

import "time"

// VisitEvent represents a successful resolution of a short link. Events are
// published to NATS off the request path and folded into the link's
// visit_count by a consumer.
type VisitEvent struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	VisitStreamName     = "VISITS"
	VisitStreamSubject  = "visits.recorded"
	VisitConsumerName   = "visit-counter"
	VisitStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
