package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Message is the payload for operations whose only output is a
// human readable confirmation, such as logout and password reset.
type Message struct {
	Message string `json:"message"`
}
