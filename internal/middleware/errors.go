package middleware

import (
	"net/http"

	"github.com/go-chi/render"
)

// errorBody mirrors the API error envelope written by handlers.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: message, Code: code})
}
