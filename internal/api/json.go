package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/mdnote/internal/apperr"
)

const maxBodyBytes = 12 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set. On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
	return false
}

// writeError maps an error kind to a status. Only server-side failures
// are logged; their details stay out of the response.
func writeError(w http.ResponseWriter, op string, err error, attrs ...slog.Attr) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = &apperr.Error{Kind: apperr.KindStorage}
	}

	switch ae.Kind {
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody(ae.Entity+" not found"))
		return
	case apperr.KindInvalid:
		writeJSON(w, http.StatusBadRequest, errorBody(ae.Msg))
		return
	case apperr.KindQuerySyntax:
		writeJSON(w, http.StatusBadRequest, errorBody("invalid search query"))
		return
	}

	args := []any{slog.String("error", err.Error())}
	for _, a := range attrs {
		args = append(args, a)
	}
	slog.Error(op+" failed", args...)
	if ae.Kind == apperr.KindLock {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("storage busy"))
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

// queryInt parses an optional integer query parameter; missing or
// malformed values yield def.
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

// queryString returns a pointer to a non-empty query parameter.
func queryString(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}
