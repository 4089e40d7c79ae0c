// ABOUTME: Tagged events emitted by streaming generation
// ABOUTME: Encodes the {"type", "data"} wire format and its SSE framing
package models

import (
	"encoding/json"
	"fmt"
	"io"
)

// EventType tags a stream event
type EventType string

const (
	EventSources EventType = "sources"
	EventContent EventType = "content"
	EventDone    EventType = "done"
	EventError   EventType = "error"
)

// StreamEvent is one element of a streamed answer.
// Data holds []SourceChunk for sources, a string for content and error, nil for done.
type StreamEvent struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// SourcesEvent builds the leading event carrying the retrieved sources
func SourcesEvent(sources []SourceChunk) StreamEvent {
	if sources == nil {
		sources = []SourceChunk{}
	}
	return StreamEvent{Type: EventSources, Data: sources}
}

// ContentEvent builds an incremental text delta event
func ContentEvent(delta string) StreamEvent {
	return StreamEvent{Type: EventContent, Data: delta}
}

// DoneEvent builds the successful terminal event
func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone}
}

// ErrorEvent builds the failed terminal event
func ErrorEvent(err error) StreamEvent {
	return StreamEvent{Type: EventError, Data: err.Error()}
}

// IsTerminal reports whether no further events follow this one
func (e StreamEvent) IsTerminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// WriteSSE writes the event as a server-sent event frame: "data: <json>\n\n"
func WriteSSE(w io.Writer, e StreamEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", e.Type, err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
