package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/pkg"
)

// sign in bodies carry one access token
const maxSignInBodyBytes = 16 * 1024

type Handler struct {
	sessions     *SessionHolder
	loginChecker *LoginChecker
}

func NewHandler(sessions *SessionHolder, loginChecker *LoginChecker) *Handler {
	return &Handler{
		sessions:     sessions,
		loginChecker: loginChecker,
	}
}

type sessionResponse struct {
	User    *User `json:"user"`
	Loading bool  `json:"loading"`
}

func (handler *Handler) HandleGetSession(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, sessionResponse{
		User:    handler.sessions.User(),
		Loading: handler.sessions.Loading(),
	}, http.StatusOK)
}

func (handler *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var req struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSignInBodyBytes)).Decode(&req); err != nil || strings.TrimSpace(req.AccessToken) == "" {
		http.Error(w, "access token missing", http.StatusBadRequest)
		return
	}

	user, err := handler.sessions.SignIn(r.Context(), req.AccessToken)
	if err != nil {
		if isTokenRejected(err) {
			log.Debugf("sign in rejected: %s", err)
			http.Error(w, "no can do", http.StatusUnauthorized)
			return
		}
		log.Errorf("sign in: %s", err)
		http.Error(w, "auth service unavailable", http.StatusBadGateway)
		return
	}

	log.Infof("user %s signed in", user.ID)
	pkg.WriteJSON(w, sessionResponse{User: user}, http.StatusOK)
}

func (handler *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	handler.loginChecker.Forget(BearerToken(r))

	if err := handler.sessions.SignOut(r.Context()); err != nil {
		if errors.Is(err, ErrNoSession) {
			http.Error(w, "not signed in", http.StatusConflict)
			return
		}
		log.Errorf("sign out: %s", err)
		http.Error(w, "sign out failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "signed-out")
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
