package domain

// ChatRequest is the structured payload a client sends over the websocket.
// Raw input that fails to parse as this structure is treated as plain text.
type ChatRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}
