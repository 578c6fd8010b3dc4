// Package jsonresponse enables consistent responses across all handlers.
package jsonresponse

// jsonError provides type for explicit json encoded error response.
type jsonError struct {
	Error string `json:"error"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) jsonError {
	return jsonError{Error: err.Error()}
}

// Message wraps a given message into json frinedly struct.
func Message(msg string) jsonError {
	return jsonError{Error: msg}
}

// Data wraps a given payload into the common data envelope.
func Data(payload any) map[string]any {
	return map[string]any{"data": payload}
}
