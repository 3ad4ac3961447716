package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/papercomputeco/ragdesk/pkg/client"
	"github.com/papercomputeco/ragdesk/pkg/sse"
)

// Event names sent by the chat and resume generation streams.
const (
	EventToken   = "token"
	EventSources = "sources"
	EventDone    = "done"
	EventError   = "error"
)

type tokenEvent struct {
	Content string `json:"content"`
}

type sourcesEvent struct {
	Sources []Source `json:"sources"`
}

type doneEvent struct {
	ConversationID string `json:"conversation_id"`
}

type errorEvent struct {
	Message string `json:"message"`
}

// TokenFunc receives answer text as it streams in.
type TokenFunc func(token string)

// Chat streams an answer to req.Question. onToken, when set, is called with
// each token in order; the assembled answer is returned once the stream ends.
// An "error" event ends the chat with a *client.Error carrying its message.
func (s *Service) Chat(ctx context.Context, req ChatRequest, onToken TokenFunc) (*ChatAnswer, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	question, err := requirePrompt(req.Question)
	if err != nil {
		return nil, err
	}
	req.Question = question

	answer := &ChatAnswer{ConversationID: req.ConversationID}
	var text strings.Builder

	err = s.api.Stream(ctx, client.Request{Path: "/chat/stream", Body: req}, func(ev sse.Event) error {
		switch ev.Name {
		case EventToken:
			token, err := tokenText(ev)
			if err != nil {
				return err
			}
			text.WriteString(token)
			if onToken != nil {
				onToken(token)
			}

		case EventSources:
			var payload sourcesEvent
			if err := ev.Unmarshal(&payload); err != nil {
				return fmt.Errorf("decoding sources event: %w", err)
			}
			answer.Sources = payload.Sources

		case EventDone:
			var payload doneEvent
			if err := ev.Unmarshal(&payload); err == nil && payload.ConversationID != "" {
				answer.ConversationID = payload.ConversationID
			}

		case EventError:
			return streamError(ev)

		default:
			s.logger.Debug("ignoring chat event", "event", ev.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	answer.Answer = text.String()
	return answer, nil
}

// tokenText reads a token event. Servers send either {"content": "..."} or a
// bare string.
func tokenText(ev sse.Event) (string, error) {
	if s, ok := ev.Payload.(string); ok {
		return s, nil
	}

	var payload tokenEvent
	if err := ev.Unmarshal(&payload); err != nil {
		return "", fmt.Errorf("decoding token event: %w", err)
	}
	return payload.Content, nil
}

func streamError(ev sse.Event) error {
	var payload errorEvent
	if err := ev.Unmarshal(&payload); err != nil || payload.Message == "" {
		if s, ok := ev.Payload.(string); ok && s != "" {
			return &client.Error{Message: s}
		}
		return &client.Error{Message: "stream reported an error"}
	}
	return &client.Error{Message: payload.Message}
}
