package models

import "encoding/json"

// Settings channel message types
const (
	MessageGetSettings = "get-settings"
	MessageGetURL      = "get-url"
	MessageSetSettings = "set-settings"
	MessageSetURL      = "set-url"

	// Replies sent by the main process
	MessageSettings = "settings"
	MessageURL      = "url"
	MessageAck      = "ack"
	MessageError    = "error"
)

// ChannelMessage is one request or reply on the settings channel. Replies carry the
// ID of the request they answer.
type ChannelMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// URLPayload is the body of set-url requests and url replies
type URLPayload struct {
	URL string `json:"url" validate:"required,url"`
}

// ErrorPayload is the body of error replies
type ErrorPayload struct {
	Message string `json:"message"`
}

// AckPayload is the body of ack replies. Navigated is false when the settings were
// saved but the main window could not load the new url.
type AckPayload struct {
	Navigated bool `json:"navigated"`
}
