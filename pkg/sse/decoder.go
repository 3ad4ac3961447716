package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// readChunkSize is the size of each read from the underlying stream.
const readChunkSize = 32 * 1024

var frameDelimiter = []byte("\n\n")

// Split appends chunk to the pending buffer and cuts every complete frame off
// the front of it. It returns the complete frames in arrival order and the
// unterminated remainder, which becomes the buffer for the next call.
//
// Split never modifies buf or chunk; the returned slices share one freshly
// allocated array.
func Split(buf, chunk []byte) (frames [][]byte, rest []byte) {
	data := make([]byte, 0, len(buf)+len(chunk))
	data = append(data, buf...)
	data = append(data, chunk...)

	for {
		i := bytes.Index(data, frameDelimiter)
		if i < 0 {
			break
		}
		frames = append(frames, data[:i:i])
		data = data[i+len(frameDelimiter):]
	}

	return frames, data
}

// ParseFrame turns one complete frame (without its terminating blank line)
// into an Event. It reports false for frames made only of line breaks, which
// carry no fields at all.
func ParseFrame(frame []byte) (Event, bool) {
	if len(bytes.Trim(frame, "\r\n")) == 0 {
		return Event{}, false
	}

	name := DefaultEventName
	var data []string

	for _, line := range strings.Split(string(frame), "\n") {
		line = strings.TrimSuffix(line, "\r")

		switch {
		case strings.HasPrefix(line, "event:"):
			if v := strings.TrimSpace(line[len("event:"):]); v != "" {
				name = v
			}
		case strings.HasPrefix(line, "data:"):
			// A single leading space after the colon is not part of the value.
			data = append(data, strings.TrimPrefix(line[len("data:"):], " "))
		default:
			// "id:", "retry:", comments and unknown fields are ignored.
		}
	}

	joined := strings.Join(data, "\n")

	return Event{
		Name:    name,
		Payload: decodePayload(joined),
		Data:    joined,
	}, true
}

// decodePayload returns the JSON value of s, or s itself when it is not JSON.
func decodePayload(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

// Decoder holds the unterminated bytes of one stream between chunks. The zero
// value is ready to use. A Decoder is single pass: feeding the same bytes
// twice yields the events twice.
//
// Feed produces the same frames as Split, but appends into a buffer it owns
// and resumes the delimiter search where the previous call stopped, so a long
// frame arriving in small chunks is scanned once.
type Decoder struct {
	buf []byte
}

// Feed consumes the next chunk of the stream and returns the events it
// completes, in order.
func (d *Decoder) Feed(chunk []byte) []Event {
	// Everything already buffered is known to hold no delimiter, but its last
	// byte may start one.
	from := max(len(d.buf)-(len(frameDelimiter)-1), 0)
	d.buf = append(d.buf, chunk...)

	var events []Event
	start := 0
	for {
		i := bytes.Index(d.buf[from:], frameDelimiter)
		if i < 0 {
			break
		}
		end := from + i
		if ev, ok := ParseFrame(d.buf[start:end]); ok {
			events = append(events, ev)
		}
		start = end + len(frameDelimiter)
		from = start
	}

	if start > 0 {
		n := copy(d.buf, d.buf[start:])
		d.buf = d.buf[:n]
	}

	return events
}

// Buffered returns the number of bytes waiting for a frame delimiter.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Decode reads r until EOF and calls fn for every event, one at a time and in
// arrival order. Bytes of a final frame that was never terminated are
// discarded. Decode returns the first error from fn or from reading r; a
// clean EOF returns nil.
func Decode(r io.Reader, fn Handler) error {
	dec := &Decoder{}
	chunk := make([]byte, readChunkSize)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			for _, ev := range dec.Feed(chunk[:n]) {
				if herr := fn(ev); herr != nil {
					return herr
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
