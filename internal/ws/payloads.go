package ws

// client → server
type inbound struct {
	Type string `json:"type"`
}

// server → client
type ReadyPayload struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
