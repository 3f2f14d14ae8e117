package dto

// ErrorResponse is the body of every non-2xx response.
//
// Example:
//
//	{"detail": "Calculation failed: integer overflow"}
type ErrorResponse struct {
	Detail string `json:"detail" example:"Invalid input: empty list or negative numbers"`
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	return e.Detail
}

// NewErrorResponse builds an ErrorResponse whose detail is message, followed
// by ": " and err's text when err is not nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	if err == nil {
		return ErrorResponse{Detail: message}
	}
	return ErrorResponse{Detail: message + ": " + err.Error()}
}
