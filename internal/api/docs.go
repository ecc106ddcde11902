package api

import (
	_ "embed"
	"net/http"
)

// The description of the status routes. It's written by hand, keep it in
// step with statuses.go.
//
//go:embed openapi.json
var openAPIDoc []byte

func (s Server) getOpenAPI(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write(openAPIDoc)
	return err
}
