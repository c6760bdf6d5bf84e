package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-service/internal/config"
	"chat-service/internal/service"
)

// staticProvider answers every completion with fixed text or a fixed error.
type staticProvider struct {
	text string
	err  error
}

func (p staticProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

func newChatTestServer(t *testing.T, provider service.Provider) *httptest.Server {
	t.Helper()

	genService := service.NewGenerationService(provider, nil, &config.Config{}, zap.NewNop())
	statusChecker := service.NewStatusChecker(provider, nil, zap.NewNop())
	chatHandler := NewChatHandler(genService, statusChecker, zap.NewNop())

	authHandler := NewAuthHandler(nil, zap.NewNop(), false)

	srv := httptest.NewServer(NewRouter(authHandler, chatHandler, zap.NewNop(), false))
	t.Cleanup(srv.Close)
	return srv
}

func decodeGenerate(t *testing.T, envelope Response) GenerateResponse {
	t.Helper()

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var out GenerateResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestGenerateEndpoint(t *testing.T) {
	srv := newChatTestServer(t, staticProvider{text: "the answer is 42"})

	resp, envelope := postJSON(t, srv.URL+"/api/v1/chat/generate", GenerateRequest{
		Prompt:              "what is the answer",
		ThinkingDelayMillis: 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)

	out := decodeGenerate(t, envelope)
	assert.Equal(t, "the answer is 42", out.Response)
	_, err := uuid.Parse(out.ID)
	assert.NoError(t, err, "response id must be a uuid")
}

func TestGenerateFallsBackOnPersistentFailure(t *testing.T) {
	// Unclassified errors retry without delay, so the budget is spent
	// instantly and the request degrades to the canned fallback.
	srv := newChatTestServer(t, staticProvider{err: errors.New("broken pipe")})

	resp, envelope := postJSON(t, srv.URL+"/api/v1/chat/generate", GenerateRequest{
		Prompt:              "hello there",
		ThinkingDelayMillis: 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "provider failures must not surface as HTTP errors")
	require.True(t, envelope.Success)

	out := decodeGenerate(t, envelope)
	assert.Equal(t, "Hello! I'm here to help you. How can I assist you today?", out.Response)
}

func TestGenerateRequiresPrompt(t *testing.T) {
	srv := newChatTestServer(t, staticProvider{text: "ok"})

	resp, envelope := postJSON(t, srv.URL+"/api/v1/chat/generate", GenerateRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, envelope.Success)
}

func TestStatusEndpoint(t *testing.T) {
	srv := newChatTestServer(t, staticProvider{text: "pong"})

	resp, err := http.Get(srv.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var status service.APIStatus
	require.NoError(t, json.Unmarshal(data, &status))
	assert.True(t, status.IsAvailable, "status starts optimistic before the first probe")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newChatTestServer(t, staticProvider{text: "ok"})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	srv := newChatTestServer(t, staticProvider{text: "ok"})

	resp, err := http.Get(srv.URL + "/api/v1/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
