package serverutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	rserrs "github.com/jdholdren/readstatus/internal/errors"
	"github.com/jdholdren/readstatus/internal/logger"
	"github.com/jdholdren/readstatus/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("error encoding json response: %s", err)
	}

	return nil
}

// Validator is a surface that can validate itself and return an error
// if something is wrong.
type Validator interface {
	Validate() error
}

// DecodeValid decodes a request and then validates it.
//
// Bodies that aren't a single JSON value are a 400. JSON that decodes but holds
// the wrong values, or fails validation, is a 422.
func DecodeValid[V Validator](r io.Reader) (V, error) {
	var v V
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return v, rserrs.E(fmt.Errorf("error decoding request: %w", err), http.StatusBadRequest)
		}

		return v, rserrs.E(fmt.Errorf("error decoding request: %w", err), http.StatusUnprocessableEntity)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return v, rserrs.E("error decoding request: unexpected data after body", http.StatusBadRequest)
	}
	if err := v.Validate(); err != nil {
		// Let validators pick their own status and details
		sErr := &rserrs.Error{}
		if errors.As(err, &sErr) {
			return v, sErr
		}

		return v, rserrs.E(fmt.Errorf("error validating request: %w", err), http.StatusUnprocessableEntity)
	}

	return v, nil
}

// AccessLogMiddleware tags the request with an id, logs it going in and out,
// and records its metrics.
func AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)

		ctx := logger.Ctx(r.Context(), slog.String("request_id", reqID))
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "request received", "method", r.Method, "path", r.URL.Path)
		start := time.Now()

		writer := &respCodeWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(writer, r)

		duration := time.Since(start)
		metrics.ObserveRequest(r.Method, routeTemplate(r), writer.code, duration)
		slog.InfoContext(ctx, "request completed",
			"method", r.Method,
			"url", r.URL.String(),
			"duration", duration,
			"status_code", writer.code,
		)
	})
}

// The matched route's template, e.g. /articles/{articleID}/status.
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tmpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}

	return tmpl
}

// To trap the response status code for logging later.
type respCodeWriter struct {
	http.ResponseWriter
	code int
}

func (w *respCodeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// HandlerFuncE is a modified type of [http.HandlerFunc] that returns an error.
type HandlerFuncE func(w http.ResponseWriter, r *http.Request) error

func (f HandlerFuncE) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}

	// Either it's already a structured error, or coerce it to one
	sErr := &rserrs.Error{}
	if !errors.As(err, &sErr) {
		slog.ErrorContext(r.Context(), "unhandled error", "error", err)
		sErr = rserrs.E(http.StatusInternalServerError, "internal server error")
	} else if sErr.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "error", sErr.Err, "status_code", sErr.Status)
	}

	if err := WriteJSON(w, sErr.Status, sErr); err != nil {
		slog.ErrorContext(r.Context(), "error writing response", "error", err)
	}
}

// ErrRouter is a newtype around a mux router that allows attaching handlers that return errors.
type ErrRouter struct {
	*mux.Router
}

func (r ErrRouter) HandleFuncE(path string, f HandlerFuncE) *mux.Route {
	return r.Handle(path, f)
}
