// Package shared holds response helpers used by all handlers.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "procura/pkg/domain-errors"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteError maps a domain error to its HTTP status and writes a JSON body.
// Uncoded errors surface as opaque 500s so infrastructure details never
// reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.HTTPStatus(code)

	message := "internal server error"
	if status < http.StatusInternalServerError {
		var de *dErrors.Error
		if errors.As(err, &de) {
			message = de.Message()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Code: string(code)})
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
