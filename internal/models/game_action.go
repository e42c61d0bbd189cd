package models

// GameAction captures a player's in-game move as received from the transport.
type GameAction struct {
	ActionType string                 `json:"action_type"`
	Payload    map[string]interface{} `json:"payload"`
}
