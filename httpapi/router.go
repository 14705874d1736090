package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router mounts the auth routes under /api/auth. The profile route runs
// behind the gate; the rest are public by design.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	auth.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", h.Refresh).Methods(http.MethodPost)
	auth.Handle("/profile", h.gate.Guard(http.HandlerFunc(h.Profile))).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.engine.Sessions().Ping(r.Context()); err != nil {
		respondMessage(w, http.StatusServiceUnavailable, "session store unavailable")
		return
	}
	respondMessage(w, http.StatusOK, "ok")
}
