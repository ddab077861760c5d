package api

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"traffic-image-server/internal/engine"
	"traffic-image-server/internal/observability"
)

type ImageHandler struct {
	Eng *engine.MatchEngine
}

func NewImageHandler(eng *engine.MatchEngine) *ImageHandler {
	return &ImageHandler{Eng: eng}
}

// Image serves the image chosen for the caller's address: file bytes for a
// path, a 302 for a URL, 404 when nothing matches or the file is missing.
func (h *ImageHandler) Image(w http.ResponseWriter, r *http.Request) {
	ip, err := clientIP(r)
	if err != nil {
		log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("bad client address")
		observability.Served.WithLabelValues(observability.OutcomeBadAddress).Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	info, kind, ok := h.Eng.Match(r.Context(), ip)
	if !ok {
		observability.Matches.WithLabelValues("none").Inc()
		observability.Served.WithLabelValues(observability.OutcomeNoMatch).Inc()
		w.WriteHeader(http.StatusNotFound)
		return
	}
	observability.Matches.WithLabelValues(kind).Inc()
	log.Debug().Str("ip", ip.String()).Str("rule", kind).Str(info.Kind.String(), info.Value).Msg("matched")

	switch info.Kind {
	case engine.ImageURL:
		observability.Served.WithLabelValues(observability.OutcomeRedirect).Inc()
		w.Header().Set("Location", info.Value)
		w.WriteHeader(http.StatusFound)
	default:
		body, err := os.ReadFile(info.Value)
		if err != nil {
			log.Warn().Err(err).Str("path", info.Value).Msg("image file unreadable")
			observability.Served.WithLabelValues(observability.OutcomeMissingFile).Inc()
			w.WriteHeader(http.StatusNotFound)
			return
		}
		observability.Served.WithLabelValues(observability.OutcomeImage).Inc()
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
