// Package api serves the insight functions and the portfolio read API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
)

// Envelope is the body of every function response.
type Envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody describes a failed call.
type ErrorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Function endpoint CORS headers, identical on every response.
const (
	allowOrigin  = "*"
	allowHeaders = "authorization, x-client-info, apikey, content-type"
)

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
}

// functionCORS sets the function CORS headers and answers preflight
// requests with 204.
func functionCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORS(w.Header())
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("writing response")
	}
}

func writeSuccess(w http.ResponseWriter, r *http.Request, data json.RawMessage) {
	writeEnvelope(w, r, http.StatusOK, Envelope{OK: true, Data: data})
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error, data json.RawMessage) {
	e := apperr.As(err)
	writeEnvelope(w, r, apperr.HTTPStatus(e.Kind), Envelope{
		OK:    false,
		Data:  data,
		Error: &ErrorBody{Kind: e.Kind, Message: apperr.PublicMessage(err)},
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
