package apierr

import (
	"encoding/json"
	"net/http"
)

// Response is the error envelope written to clients.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Write renders err as a JSON error response.
// The message is translated using the request's Accept-Language header.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := From(err)

	body := Response{
		Success: false,
		Message: Printer(r).Sprintf(apiErr.Message, apiErr.Args...),
		Code:    apiErr.Code,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(body)
}

// HandlerFunc handles an error produced by a middleware.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
