package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-service/internal/service"
	"chat-service/internal/util"
)

// ChatHandler handles generation requests and provider status.
type ChatHandler struct {
	genService    *service.GenerationService
	statusChecker *service.StatusChecker
	logger        *zap.Logger
}

func NewChatHandler(genService *service.GenerationService, statusChecker *service.StatusChecker, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		genService:    genService,
		statusChecker: statusChecker,
		logger:        logger,
	}
}

// GenerateRequest is the generate request body.
type GenerateRequest struct {
	Prompt              string `json:"prompt"`
	ProgressiveResponse bool   `json:"progressiveResponse,omitempty"`
	ThinkingDelayMillis int    `json:"thinkingDelayMillis,omitempty"`
	MaxRetries          int    `json:"maxRetries,omitempty"`
}

// GenerateResponse carries the generated text. Fallback answers are not
// distinguishable here except by content.
type GenerateResponse struct {
	ID       string `json:"id"`
	Response string `json:"response"`
}

// RegisterRoutes registers all chat routes
func (h *ChatHandler) RegisterRoutes(router chi.Router) {
	router.Route("/chat", func(r chi.Router) {
		r.Post("/generate", h.Generate)
	})
	router.Get("/status", h.Status)
}

// Generate runs one generation request. The thinking delay is either the
// client's explicit override or auto-computed from the prompt here, at the
// UI-facing boundary.
func (h *ChatHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	if !hasJSONBody(r) {
		respondWithError(w, http.StatusBadRequest, errors.New("Content-Type must be application/json"), "Invalid request")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("prompt is required"), "Missing required fields")
		return
	}

	thinkingDelay := time.Duration(req.ThinkingDelayMillis) * time.Millisecond
	if thinkingDelay <= 0 {
		thinkingDelay = service.ThinkingDelay(req.Prompt)
	}

	text, err := h.genService.Generate(ctx, req.Prompt, service.GenerateOptions{
		EnableProgressiveResponse: req.ProgressiveResponse,
		CustomThinkingDelay:       thinkingDelay,
		MaxRetries:                req.MaxRetries,
	})
	if err != nil {
		// Only context cancellation reaches here; the client is gone.
		h.logger.Warn("Generation request cancelled", util.ErrorField(err))
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(GenerateResponse{
		ID:       uuid.NewString(),
		Response: text,
	}, ""))

	h.logger.Info("Generation request served",
		util.Duration("duration", time.Since(startTime)),
		util.Int("response_length", len(text)),
	)
}

// Status returns the latest provider/backend probe result.
func (h *ChatHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, successResponse(h.statusChecker.Status(), ""))
}
