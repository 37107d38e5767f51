package engine

import "time"

// EventType represents different lifecycle phases of a load or query
type EventType string

const (
	EventExtractStart EventType = "extract_start"
	EventExtractEnd   EventType = "extract_end"
	EventParseStart   EventType = "parse_start"
	EventParseEnd     EventType = "parse_end"
	EventCoerceStart  EventType = "coerce_start"
	EventCoerceEnd    EventType = "coerce_end"
	EventFallback     EventType = "coerce_fallback"
	EventLexStart     EventType = "lex_start"
	EventLexEnd       EventType = "lex_end"
	EventPlanStart    EventType = "plan_start"
	EventPlanEnd      EventType = "plan_end"
	EventFilterStart  EventType = "filter_start"
	EventFilterEnd    EventType = "filter_end"
	EventError        EventType = "error"
)

// Event represents a lifecycle event in the pipeline
type Event struct {
	Type      EventType   // Type of event
	RequestID string      // Request ID for tracing
	Timestamp time.Time   // When the event occurred
	Data      interface{} // Phase-specific data (e.g., row count, query text, inference)
}

// Observer interface for event subscribers
// Observers receive events at major pipeline phases
type Observer interface {
	OnEvent(event Event)
}
