package signaling

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// EventType names a signaling frame.
type EventType string

const (
	EventAssignedSession EventType = "assigned-session"
	EventInviteCall      EventType = "invite-call"
	EventCallAnswered    EventType = "call-answered"
	EventCallEnded       EventType = "call-ended"
	EventCallUnreachable EventType = "call-unreachable"
)

// Message is a signaling frame in either direction. Signal is forwarded as is.
type Message struct {
	Type   EventType       `json:"type"`
	ID     string          `json:"id,omitempty"`
	To     string          `json:"to,omitempty"`
	From   string          `json:"from,omitempty"`
	Name   string          `json:"name,omitempty"`
	Signal json.RawMessage `json:"signal,omitempty"`
}

// parseClientMessage decodes and validates a frame received from a client.
// A client supplied From is accepted but always replaced by the relay.
func parseClientMessage(data []byte) (Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var msg Message
	if err := dec.Decode(&msg); err != nil {
		return Message{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Message{}, fmt.Errorf("unexpected trailing data")
	}
	if err := msg.validate(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (m Message) validate() error {
	switch m.Type {
	case EventInviteCall, EventCallAnswered:
		if m.To == "" {
			return fmt.Errorf("%s message missing to", m.Type)
		}
		if len(m.Signal) == 0 || string(m.Signal) == "null" {
			return fmt.Errorf("%s message missing signal", m.Type)
		}
		if m.ID != "" {
			return fmt.Errorf("%s message has unexpected id", m.Type)
		}
		if m.Type == EventCallAnswered && m.Name != "" {
			return fmt.Errorf("call-answered message has unexpected name")
		}
	default:
		return fmt.Errorf("unsupported message type %q", m.Type)
	}
	return nil
}
