package types

// SuccessEnvelope wraps every successful fulfillment API response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Details is only populated for codes
// that allow caller-visible context, such as validation field errors or the
// picked/packed counts behind a blocked transition.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failed fulfillment API response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
