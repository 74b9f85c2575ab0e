package transport

import (
	"encoding/json"

	"github.com/fastygo/taskdesk/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Success    bool               `json:"success"`
	Data       interface{}        `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Error      string             `json:"error,omitempty"`
	Code       string             `json:"code,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// NewPage returns a success envelope carrying one page of results.
func NewPage(data interface{}, pagination domain.Pagination) Envelope {
	return Envelope{Success: true, Data: data, Pagination: &pagination}
}

// NewMessage returns a success envelope with a human readable message.
func NewMessage(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// NewError returns an error envelope.
func NewError(code, message string) Envelope {
	return Envelope{Success: false, Code: code, Error: message}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
