package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type PlaceChipData struct {
	Value int `json:"value"`
}

type ConfigureDecksData struct {
	Decks int `json:"decks"`
}

// Server → Client Messages

type WelcomeData struct {
	ConnectionID     string `json:"connectionId"`
	Chips            []int  `json:"chips"`
	CountdownSeconds int    `json:"countdownSeconds"`
}

// StateData carries a redacted snapshot plus the passive estimates. Accepted
// reports whether the command that produced it changed anything.
type StateData struct {
	Snapshot         game.Snapshot `json:"snapshot"`
	BustProbability  int           `json:"bustProbability"`
	Hint             string        `json:"hint"`
	Accepted         bool          `json:"accepted"`
	CountdownRunning bool          `json:"countdownRunning"`
	CountdownSeconds float64       `json:"countdownSeconds"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
