package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	rserrs "github.com/jdholdren/readstatus/internal/errors"
	"github.com/jdholdren/readstatus/internal/logger"
	"github.com/jdholdren/readstatus/internal/metrics"
	"github.com/jdholdren/readstatus/internal/readstatus"
	"github.com/jdholdren/readstatus/internal/serverutil"
)

type (
	StatusResponse struct {
		ArticleID string            `json:"article_id"`
		Status    readstatus.Status `json:"status"`
	}

	StatusUpsertRequest struct {
		// Unknown values already fail decoding, this only has to catch it missing.
		Status *readstatus.Status `json:"status"`
	}
)

func (req StatusUpsertRequest) Validate() error {
	if req.Status == nil {
		return rserrs.E("status is required", http.StatusUnprocessableEntity, rserrs.Field("status", "required"))
	}

	return nil
}

// The router matches on the escaped path, so the id still needs decoding.
func pathArticleID(r *http.Request) (string, error) {
	id, err := url.PathUnescape(mux.Vars(r)["articleID"])
	if err != nil {
		return "", rserrs.E(fmt.Errorf("error decoding article id: %w", err), http.StatusBadRequest)
	}

	return id, nil
}

func (s Server) getStatus(w http.ResponseWriter, r *http.Request) error {
	articleID, err := pathArticleID(r)
	if err != nil {
		return err
	}
	ctx := logger.Ctx(r.Context(), slog.String("article_id", articleID))

	st, created, err := s.repo.GetOrCreateDefault(ctx, articleID)
	if errors.Is(err, readstatus.ErrCorruptStatus) {
		slog.ErrorContext(ctx, "stored status is not a known value", "error", err)
	}
	if err != nil {
		return fmt.Errorf("error getting status: %w", err)
	}
	if created {
		metrics.RecordDefaultCreated()
		slog.InfoContext(ctx, "created default status")
	}

	return serverutil.WriteJSON(w, http.StatusOK, StatusResponse{
		ArticleID: articleID,
		Status:    st,
	})
}

func (s Server) putStatus(w http.ResponseWriter, r *http.Request) error {
	articleID, err := pathArticleID(r)
	if err != nil {
		return err
	}
	ctx := logger.Ctx(r.Context(), slog.String("article_id", articleID))

	body, err := serverutil.DecodeValid[StatusUpsertRequest](r.Body)
	if err != nil {
		return err
	}

	st, err := s.repo.Upsert(ctx, articleID, *body.Status)
	if errors.Is(err, readstatus.ErrInvalidStatus) {
		return rserrs.E(err, http.StatusUnprocessableEntity)
	}
	if err != nil {
		return fmt.Errorf("error writing status: %w", err)
	}
	metrics.RecordStatusWrite(st.String())

	return serverutil.WriteJSON(w, http.StatusOK, StatusResponse{
		ArticleID: articleID,
		Status:    st,
	})
}
