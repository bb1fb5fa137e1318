package types

// ErrorEnvelope is the wire shape for every failed request. The error key
// always carries a human-readable string; code and details are additive.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Message is the wire shape for operations that return no resource.
type Message struct {
	Message string `json:"message"`
}
