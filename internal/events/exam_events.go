package events

import (
	"time"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents different types of domain events
type EventType string

const (
	EventExamSubmitted  EventType = "exam.submitted"
	EventPoolExhausted  EventType = "exam.pool_exhausted"
	EventUserRegistered EventType = "user.registered"
)

const (
	eventSource  = "exam-trainer-service"
	eventVersion = "1.0"
)

// Event is the envelope for every published domain event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type ExamSubmittedEvent struct {
	UserID         string          `json:"user_id"`
	Timestamp      string          `json:"timestamp"`
	ExamType       models.ExamType `json:"exam_type"`
	TotalScore     int             `json:"total_score"`
	TotalQuestions int             `json:"total_questions"`
	PartIDs        []string        `json:"part_ids"`
}

type PoolExhaustedEvent struct {
	UserID     string          `json:"user_id"`
	ExamType   models.ExamType `json:"exam_type"`
	PartNumber int             `json:"part_number"`
}

type UserRegisteredEvent struct {
	Username string `json:"username"`
}
