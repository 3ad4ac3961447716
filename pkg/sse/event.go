// Package sse decodes Server-Sent Events streams into ordered application
// events for the ragdesk client.
//
// Framing follows the line-oriented event-stream format: a frame ends with a
// blank line ("\n\n"), "event:" names the event and each "data:" line adds
// one line of payload. Decoding is built around Split, a pure buffering
// function, so the result does not depend on where the transport cut the
// byte stream into chunks.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "encoding/json"

// DefaultEventName is the event name used when a frame has no "event:" line.
const DefaultEventName = "message"

// Event represents a single decoded frame.
type Event struct {
	// Name is the value of the "event:" field, or DefaultEventName.
	Name string

	// Payload is the JSON decoding of Data. When Data is not valid JSON
	// Payload is Data itself as a string.
	Payload any

	// Data is the contents of all "data:" lines of the frame joined with "\n".
	Data string
}

// Unmarshal decodes the raw Data of the event into v.
func (e Event) Unmarshal(v any) error {
	return json.Unmarshal([]byte(e.Data), v)
}

// Handler consumes decoded events. Returning an error stops decoding.
type Handler func(Event) error
