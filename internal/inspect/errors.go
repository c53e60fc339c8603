package inspect

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  ErrorDetail `json:"error"`
	Status int         `json:"status"`
	Path   string      `json:"path,omitempty"`
}

// ErrorDetail contains detailed error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps lookup errors to 404 and 409, everything else to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
	switch {
	case errors.Is(err, ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrAmbiguous):
		status, code = http.StatusConflict, "AMBIGUOUS"
	}
	writeJSONError(w, status, ErrorResponse{
		Error:  ErrorDetail{Code: code, Message: err.Error()},
		Status: status,
		Path:   r.URL.Path,
	})
}

func writeJSONError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
