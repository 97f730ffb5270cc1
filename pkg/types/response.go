package types

// SuccessEnvelope is the body shape for every 2xx response.
type SuccessEnvelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status"`
}

// ErrorEnvelope is the body shape for every non-2xx response.
type ErrorEnvelope struct {
	Errors any `json:"errors"`
	Status int `json:"status"`
}
