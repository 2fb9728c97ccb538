package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
	"github.com/ziadkadry99/portfolio-ai/internal/insights"
	"github.com/ziadkadry99/portfolio-ai/internal/prompts"
)

// Runner executes one insight request.
type Runner interface {
	Run(ctx context.Context, req insights.Request) (*insights.Response, error)
}

// Function paths under /functions/v1.
var functionPaths = map[string]prompts.UseCase{
	"chat-assistant":              prompts.Chat,
	"explain-indicator":           prompts.Explain,
	"generate-action-suggestions": prompts.Suggestions,
	"generate-dynamic-report":     prompts.Report,
	"advanced-rag-search":         prompts.Search,
}

// maxBodyBytes bounds a function request body.
const maxBodyBytes = 1 << 20

// RegisterFunctions mounts the insight functions.
func RegisterFunctions(r chi.Router, runner Runner) {
	r.Route("/functions/v1", func(r chi.Router) {
		r.Use(functionCORS)
		for path, uc := range functionPaths {
			r.Post("/"+path, handleFunction(runner, uc))
		}
	})
}

// functionRequest holds every input field any function accepts.
type functionRequest struct {
	Question string         `json:"question"`
	Query    string         `json:"query"`
	Prompt   string         `json:"prompt"`
	Filters  map[string]any `json:"filters"`
}

func (f functionRequest) text(uc prompts.UseCase) string {
	switch insights.InputField(uc) {
	case "question":
		return f.Question
	case "query":
		return f.Query
	case "prompt":
		return f.Prompt
	default:
		return ""
	}
}

func handleFunction(runner Runner, uc prompts.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body functionRequest

		defer func() {
			if rec := recover(); rec != nil {
				zerolog.Ctx(r.Context()).Error().Interface("panic", rec).Str("use_case", string(uc)).Msg("function panicked")
				writeFailure(w, r, apperr.Internal(fmt.Errorf("%v", rec)), insights.Default(uc, body.text(uc), time.Now()))
			}
		}()

		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, r, err, insights.Default(uc, "", time.Now()))
			return
		}

		resp, err := runner.Run(r.Context(), insights.Request{
			UseCase: uc,
			Text:    body.text(uc),
			Filters: body.Filters,
		})
		if resp != nil && resp.InteractionID != "" {
			w.Header().Set("X-Interaction-ID", resp.InteractionID)
		}
		if err != nil {
			var data json.RawMessage
			if resp != nil {
				data = resp.Data
			}
			writeFailure(w, r, err, data)
			return
		}
		writeSuccess(w, r, resp.Data)
	}
}

// decodeBody reads an optional JSON object. An empty body is an empty
// request.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}
