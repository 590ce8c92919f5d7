package handlers

import (
	"net/http"

	"github.com/example/movie-platform/internal/platform/api"
)

// noticeResponse is the body of every successful write: the new state plus a
// message for the user.
type noticeResponse struct {
	Result       any              `json:"result,omitempty"`
	Notification api.Notification `json:"notification"`
}

func writeNotice(w http.ResponseWriter, status int, result any, n api.Notification) {
	api.WriteJSON(w, status, noticeResponse{Result: result, Notification: n})
}

func signInRequired(w http.ResponseWriter, rid, description string) {
	api.WriteErrorNotice(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", rid,
		api.Failure("Sign in required", description))
}
