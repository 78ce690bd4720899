package models

// APIResponse is the envelope for every API reply.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// NewInfoResponse reports an expected no-op, such as following someone twice.
func NewInfoResponse(message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
	}
}

func NewErrorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   message,
	}
}

func NewValidationErrorResponse(errors map[string]string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   "Validation failed",
		Errors:  errors,
	}
}

// DeliveryReport is the per-peer outcome of a fan-out write.
type DeliveryReport struct {
	DID        string `json:"did"`
	Stored     bool   `json:"stored"`
	Replicated bool   `json:"replicated"`
	Error      string `json:"error,omitempty"`
}
