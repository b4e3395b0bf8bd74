package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypePing MessageType = "PING"

	// Server to Client
	MessageTypePong        MessageType = "PONG"
	MessageTypeMealCreated MessageType = "MEAL_CREATED"
	MessageTypeMealUpdated MessageType = "MEAL_UPDATED"
	MessageTypeMealDeleted MessageType = "MEAL_DELETED"
	MessageTypeError       MessageType = "ERROR"

	// MessageTypeSessionReissued carries the replacement token when the
	// connection was opened with an expired one.
	MessageTypeSessionReissued MessageType = "SESSION_REISSUED"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = payloadBytes
	}
	return msg, nil
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
