package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/blockversemc/modfeed/pkg/errors"
	"github.com/blockversemc/modfeed/pkg/modlist"
)

// Header reporting whether the feed came from the feed cache.
const headerFeedCache = "X-Feed-Cache"

func (s *Server) handleModData(w http.ResponseWriter, r *http.Request) {
	res, err := s.builder.Build(r.Context(), false)
	if err != nil {
		code := errorCode(err)
		s.logger.Error("feed build failed",
			"request_id", RequestIDFromContext(r.Context()),
			"code", code,
			"err", err)
		writeError(w, http.StatusInternalServerError, code.Public())
		return
	}

	s.opts.CacheControl.Apply(w.Header())
	if res.FromCache {
		w.Header().Set(headerFeedCache, "hit")
	} else {
		w.Header().Set(headerFeedCache, "miss")
	}
	writeJSON(w, http.StatusOK, res.Records)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.opts.Version,
	})
}

// errorCode classifies a build failure. A bare list sentinel counts as a list
// failure even when no coded error wraps it.
func errorCode(err error) apierrors.Code {
	if errors.Is(err, modlist.ErrListUnavailable) {
		return apierrors.ErrCodeListUnavailable
	}
	if code := apierrors.GetCode(err); code != "" {
		return code
	}
	return apierrors.ErrCodeInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Del("Cache-Control")
	writeJSON(w, status, map[string]string{"error": message})
}
