package events

// Message defines the structure for event feed messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}
