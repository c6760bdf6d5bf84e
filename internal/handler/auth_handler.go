package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chat-service/internal/service"
	"chat-service/internal/util"
)

// AuthHandler handles the simulated phone login endpoints.
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
	debugOTP    bool
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger, debugOTP bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
		debugOTP:    debugOTP,
	}
}

// SendOTPRequest is the send-otp request body.
type SendOTPRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
}

// SendOTPResponse echoes the code back for display. Demo behavior only.
type SendOTPResponse struct {
	MessageID string `json:"messageId"`
	OTP       string `json:"otp"`
	Simulated bool   `json:"simulated"`
}

// VerifyOTPRequest is the verify-otp request body.
type VerifyOTPRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
	OTP         string `json:"otp"`
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Route("/auth", func(r chi.Router) {
		r.Post("/send-otp", h.SendOTP)
		r.Post("/verify-otp", h.VerifyOTP)
		if h.debugOTP {
			r.Get("/debug-otp", h.DebugOTP)
		}
	})
}

// SendOTP issues a fresh code and simulates SMS delivery.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	if !hasJSONBody(r) {
		respondWithError(w, http.StatusBadRequest, errors.New("Content-Type must be application/json"), "Invalid request")
		return
	}

	var req SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Phone == "" || req.CountryCode == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("phone and countryCode are required"), "Missing required fields")
		return
	}

	code, err := h.authService.IssueOTP(ctx, req.Phone, req.CountryCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPhone) || errors.Is(err, service.ErrInvalidCountryCode) {
			respondWithError(w, http.StatusBadRequest, err, "Invalid phone input")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err, "Failed to send OTP")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(SendOTPResponse{
		MessageID: "simulated",
		OTP:       code,
		Simulated: true,
	}, "OTP sent successfully (simulated)"))

	h.logger.Info("OTP issued via HTTP",
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "SendOTP"),
	)
}

// VerifyOTP checks a submitted code. The three failure reasons collapse to
// one generic client-facing message; the distinction stays in logs and
// events.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	if !hasJSONBody(r) {
		respondWithError(w, http.StatusBadRequest, errors.New("Content-Type must be application/json"), "Invalid request")
		return
	}

	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Phone == "" || req.CountryCode == "" || req.OTP == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("phone, countryCode, and otp are required"), "Missing required fields")
		return
	}

	status, err := h.authService.VerifyOTP(ctx, req.Phone, req.CountryCode, req.OTP)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err, "Failed to verify OTP")
		return
	}

	if status != service.VerifyOK {
		respondWithError(w, http.StatusBadRequest, errors.New("invalid or expired OTP"), "Verification failed")
		h.logger.Info("OTP verification rejected",
			util.String("status", status.String()),
			util.Duration("duration", time.Since(startTime)),
		)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "OTP verified successfully"))
}

// DebugOTP dumps the pending store contents. Dev/demo only.
func (h *AuthHandler) DebugOTP(w http.ResponseWriter, r *http.Request) {
	entries, err := h.authService.DebugSnapshot(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err, "Failed to read OTP store")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"store_size": len(entries),
		"records":    entries,
	}, ""))
}

func hasJSONBody(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
