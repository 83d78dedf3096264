package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/w-h-a/ragchat/internal/errs"
	"github.com/w-h-a/ragchat/internal/service/chat"
)

const maxBodyBytes = 1 << 20

type Service interface {
	Respond(ctx context.Context, msgs []chat.Message) (chat.Answer, error)
	Diagnose(ctx context.Context, query string) (chat.Diagnosis, error)
}

type chatRequest struct {
	Messages []chat.Message `json:"messages"`
}

type debugRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type debugErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Stack   string `json:"stack,omitempty"`
}

type Handler struct {
	service Service
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, errs.StatusCode(err), errorResponse{Error: err.Error()})
		return
	}

	answer, err := h.service.Respond(r.Context(), req.Messages)
	if err != nil {
		writeJSON(w, errs.StatusCode(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// Debug handles POST /api/chat-debug.
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	var req debugRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, errs.StatusCode(err), debugErrorResponse{Error: err.Error()})
		return
	}

	diagnosis, err := h.service.Diagnose(r.Context(), req.Query)
	if err != nil {
		rsp := debugErrorResponse{Error: err.Error()}
		if !errs.Is(err, errs.KindValidation) {
			rsp.Stack = errs.Stack(err)
		}
		writeJSON(w, errs.StatusCode(err), rsp)
		return
	}

	writeJSON(w, http.StatusOK, diagnosis)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	const op = "handler.chat.decode"

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.Validation(op, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return errs.Validation(op, fmt.Sprintf("invalid request body: %v", err))
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}
