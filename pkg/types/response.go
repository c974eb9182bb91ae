package types

// SuccessEnvelope wraps every 2xx body. Clients decode it with the concrete
// payload type, handlers write it with any.
type SuccessEnvelope[T any] struct {
	Data T `json:"data"`
}

// APIError is the public part of a failure. Details only appear for codes
// that allow them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
