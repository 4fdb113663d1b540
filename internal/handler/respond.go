package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// writeJSON serializes v with the given status. Encoding failures are
// unrecoverable at this point (headers are already out), so they are ignored.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON strictly decodes the request body into dst. Unknown fields and
// trailing garbage are rejected so typos surface as 400s instead of silently
// dropped fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// tripID parses the {tripID} path parameter.
func tripID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "tripID"))
}
