// Package stream provides a forward-only, low-memory view of an HTML
// document: a channel of coarse-grained parse events driven straight off
// the tokenizer, bypassing tree construction entirely.
package stream

import (
	"github.com/basalt-labs/html5/encoding"
	"github.com/basalt-labs/html5/tokenizer"
)

// EventType classifies an Event.
type EventType int

// The event types a stream can emit.
const (
	StartTagEvent EventType = iota
	EndTagEvent
	TextEvent
	CommentEvent
	DoctypeEvent
)

var eventTypeNames = [...]string{"StartTag", "EndTag", "Text", "Comment", "Doctype"}

func (e EventType) String() string {
	if int(e) >= 0 && int(e) < len(eventTypeNames) {
		return eventTypeNames[e]
	}
	return "Unknown"
}

// Event is a single step of a streamed parse.
type Event struct {
	Type EventType

	// Name is the tag name for StartTagEvent/EndTagEvent, or the DOCTYPE name.
	Name string

	// Attrs holds attributes; only populated for StartTagEvent.
	Attrs map[string]string

	// Data holds the payload for TextEvent/CommentEvent.
	Data string

	PublicID string
	SystemID string
}

// Stream tokenizes html and publishes one Event per token on the returned
// channel, closing it once the input is exhausted. The options are accepted
// for symmetry with StreamBytes; a string input is already decoded text, so
// an encoding hint has nothing to act on.
func Stream(html string, opts ...Option) <-chan Event {
	_ = resolveSettings(opts)
	events := make(chan Event)
	go emitEvents(html, events)
	return events
}

// StreamBytes decodes html per the WHATWG sniffing algorithm (or the
// encoding named via WithEncoding) and streams it the same way Stream does.
func StreamBytes(html []byte, opts ...Option) <-chan Event {
	s := resolveSettings(opts)

	decoded, _, err := encoding.Decode(html, s.encodingHint)
	events := make(chan Event)
	if err != nil {
		close(events)
		return events
	}

	go emitEvents(decoded, events)
	return events
}

func ptrToString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// emitEvents drains a tokenizer pass into events, translating each token
// kind to its Event shape and skipping tokenizer-level parse errors.
func emitEvents(html string, events chan<- Event) {
	defer close(events)

	tz := tokenizer.New(html)
	for {
		tok := tz.Next()
		if ev, ok := translate(tok); ok {
			events <- ev
		}
		if tok.Type == tokenizer.EOF {
			return
		}
	}
}

func translate(tok tokenizer.Token) (Event, bool) {
	switch tok.Type {
	case tokenizer.StartTag:
		return Event{Type: StartTagEvent, Name: tok.Name, Attrs: tokenizer.AttrsToMap(tok.Attrs)}, true
	case tokenizer.EndTag:
		return Event{Type: EndTagEvent, Name: tok.Name}, true
	case tokenizer.Character:
		return Event{Type: TextEvent, Data: tok.Data}, true
	case tokenizer.Comment:
		return Event{Type: CommentEvent, Data: tok.Data}, true
	case tokenizer.DOCTYPE:
		return Event{
			Type:     DoctypeEvent,
			Name:     tok.Name,
			PublicID: ptrToString(tok.PublicID),
			SystemID: ptrToString(tok.SystemID),
		}, true
	default:
		return Event{}, false
	}
}
