package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypePlaceChip      MessageType = "place_chip"
	MessageTypeClearBet       MessageType = "clear_bet"
	MessageTypeDeal           MessageType = "deal"
	MessageTypeHit            MessageType = "hit"
	MessageTypeStand          MessageType = "stand"
	MessageTypeDouble         MessageType = "double"
	MessageTypeSplit          MessageType = "split"
	MessageTypeConfigureDecks MessageType = "configure_decks"
	MessageTypeSnapshot       MessageType = "snapshot"

	// Server to client messages
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeState   MessageType = "state"
	MessageTypeError   MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
