package middleware

import "github.com/gin-gonic/gin"

// APIError is the error body every endpoint returns.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WriteError writes an error response tagged with the request id.
func WriteError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: APIError{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	}})
}
