package ierr

import "strings"

// ErrorResponse is the shape an error takes when it crosses to a caller that
// renders it.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind          string         `json:"kind"`
	Display       string         `json:"display"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// ToErrorResponse converts err into an ErrorResponse. The display message is
// the joined hints, falling back to the error text.
func ToErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	display := strings.Join(GetHints(err), "; ")
	if display == "" {
		display = err.Error()
	}

	details := GetReportableDetails(err)
	if len(details) == 0 {
		details = nil
	}

	return &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Kind:          Kind(err),
			Display:       display,
			InternalError: err.Error(),
			Details:       details,
		},
	}
}
