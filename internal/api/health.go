package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	rserrs "github.com/jdholdren/readstatus/internal/errors"
	"github.com/jdholdren/readstatus/internal/serverutil"
)

type healthResp struct {
	Status string `json:"status"`
}

func (s Server) getHealth(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "health check failed", "error", err)
		return rserrs.E("database unavailable", http.StatusServiceUnavailable)
	}

	return serverutil.WriteJSON(w, http.StatusOK, healthResp{Status: "ok"})
}
