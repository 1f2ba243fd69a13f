package misc

import (
	"net/http"
	"strings"

	"github.com/2beens/fittrack/pkg"
)

type Handler struct {
	versionInfo string
}

func NewHandler(versionInfo string) *Handler {
	return &Handler{
		versionInfo: strings.TrimSpace(versionInfo),
	}
}

func (handler *Handler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) HandleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	if handler.versionInfo == "" {
		pkg.WriteTextResponseOK(w, "unknown")
		return
	}
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
