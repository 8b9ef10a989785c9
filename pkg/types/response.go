package types

// SuccessEnvelope wraps every successful JSON response body. The storefront
// and admin panel both unwrap the data field client-side.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire shape of a coded failure. Details carries structured
// validation output when the error code permits it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
