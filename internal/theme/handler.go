package theme

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/pkg"
)

// SystemPreferenceHeader is the client hint browsers send with the
// preferred color scheme.
const SystemPreferenceHeader = "Sec-CH-Prefers-Color-Scheme"

type Handler struct {
	kv storage.KV
}

func NewHandler(kv storage.KV) *Handler {
	return &Handler{kv: kv}
}

type themeResponse struct {
	Theme Theme `json:"theme"`
}

// HandleGet answers with the saved theme. The first read resolves it
// against the client's system preference and saves it.
func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	t, err := Init(r.Context(), handler.kv, systemPreference(r))
	if err != nil {
		log.Errorf("get theme: %s", err)
		http.Error(w, "no can do", http.StatusInternalServerError)
		return
	}

	w.Header().Add("Accept-CH", SystemPreferenceHeader)
	pkg.WriteJSON(w, themeResponse{Theme: t}, http.StatusOK)
}

func (handler *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	t, err := Parse(req.Theme)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := Save(r.Context(), handler.kv, t); err != nil {
		if errors.Is(err, ErrInvalidTheme) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("put theme: %s", err)
		http.Error(w, "no can do", http.StatusInternalServerError)
		return
	}

	log.Debugf("theme saved: %s", t)
	pkg.WriteJSON(w, themeResponse{Theme: t}, http.StatusOK)
}

func systemPreference(r *http.Request) string {
	if system := r.URL.Query().Get("system"); system != "" {
		return system
	}
	return r.Header.Get(SystemPreferenceHeader)
}
