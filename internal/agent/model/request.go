package model

// QueryRequest is the inbound body of POST /process_query.
type QueryRequest struct {
	Message string `json:"message"`
	// ConversationHistory turns are opaque: objects or plain strings.
	ConversationHistory []any          `json:"conversation_history"`
	UserContext         map[string]any `json:"user_context"`
	// Image is a data URL, raw base64 payload or http(s) URL.
	Image string `json:"image,omitempty"`
}

// QueryResponse is the only body shape the endpoint ever returns.
type QueryResponse struct {
	Actions []Action `json:"actions"`
}

// HealthStatus reports process-wide readiness.
type HealthStatus struct {
	Status         string `json:"status"`
	CatalogBackend string `json:"catalog_backend"`
	CatalogReady   bool   `json:"catalog_ready"`
	Tools          int    `json:"tools"`
	Mode           string `json:"mode"`
}
