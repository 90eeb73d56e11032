// Package respond writes JSON responses and translates classified errors
// into the API's error body.
package respond

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ayush/todo-api/internal/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   apperr.Kind `json:"error"`
	Message string      `json:"message"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("respond: encode: %v", err)
	}
}

// Error writes err using its kind's status. Unclassified errors are logged
// and reported as a generic internal error.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal || kind == apperr.KindStoreUnavailable {
		log.Printf("request failed: %v", err)
	}
	JSON(w, kind.HTTPStatus(), ErrorBody{Error: kind, Message: apperr.MessageOf(err)})
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}
