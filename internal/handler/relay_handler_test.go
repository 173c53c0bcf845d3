package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/files-coaching/contact-relay/internal/config"
	"github.com/files-coaching/contact-relay/internal/dto"
	"github.com/files-coaching/contact-relay/internal/handler"
	"github.com/files-coaching/contact-relay/internal/middleware"
	"github.com/files-coaching/contact-relay/internal/router"
	"github.com/files-coaching/contact-relay/internal/service"
	"github.com/files-coaching/contact-relay/pkg/mailer"
)

const relayPath = "/send-confirmation"

type recordingSender struct {
	mu       sync.Mutex
	calls    int
	failures map[string]error
}

func (s *recordingSender) Send(_ context.Context, email mailer.Email) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if err := s.failures[email.To[0]]; err != nil {
		return "", err
	}
	return "msg-" + email.To[0], nil
}

func (s *recordingSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func relayConfig() config.Config {
	return config.Config{
		AppName:       "relay-test",
		AppEnv:        "test",
		ResendAPIKey:  "re_test",
		AdminEmail:    "coach@files-coaching.com",
		FromEmail:     "Files Coaching <contact@files-coaching.com>",
		TestFromEmail: "Files Coaching <onboarding@resend.dev>",
		ReplyTo:       "contact@files-coaching.com",
		BrandName:     "Files Coaching",
	}
}

func newRelayApp(cfg config.Config, sender mailer.Sender) *fiber.App {
	logger := zerolog.Nop()
	relay := service.NewRelayService(
		cfg,
		service.NewSubmissionNormalizer(logger),
		service.NewValidator(),
		service.NewTemplateRenderer(cfg.BrandName),
		service.NewDispatcher(sender, logger),
		logger,
	)

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler(logger)})
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{RelayHandler: handler.NewRelayHandler(relay, cfg, logger)})
	return app
}

func postJSON(t *testing.T, app *fiber.App, target, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func requireCORS(t *testing.T, resp *http.Response) {
	t.Helper()
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return body
}

func TestRelayHandler_Success(t *testing.T) {
	sender := &recordingSender{}
	app := newRelayApp(relayConfig(), sender)

	resp := postJSON(t, app, relayPath, `{"email":"alice@example.com","prenom":"Alice","age":30}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	requireCORS(t, resp)

	var body dto.RelayResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	require.Equal(t, dto.RelayResponse{OK: true, ClientID: "msg-alice@example.com", AdminID: "msg-coach@files-coaching.com"}, body)
	require.Equal(t, 2, sender.callCount())
}

func TestRelayHandler_LegacyPathAndFormBody(t *testing.T) {
	sender := &recordingSender{}
	app := newRelayApp(relayConfig(), sender)

	req := httptest.NewRequest(http.MethodPost, "/.netlify/functions/send-confirmation", strings.NewReader("email=bob%40example.com&prenom=Bob"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 2, sender.callCount())
}

func TestRelayHandler_InvalidEmail(t *testing.T) {
	for _, payload := range []string{`{"email":""}`, `{"email":"nope"}`, `{"prenom":"X"}`} {
		sender := &recordingSender{}
		app := newRelayApp(relayConfig(), sender)

		resp := postJSON(t, app, relayPath, payload)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, payload)
		requireCORS(t, resp)

		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
		require.False(t, body.OK)
		require.Equal(t, "Invalid email", body.Error)
		require.Zero(t, sender.callCount(), payload)
	}
}

func TestRelayHandler_TestModeBypassesValidation(t *testing.T) {
	sender := &recordingSender{}
	app := newRelayApp(relayConfig(), sender)

	resp := postJSON(t, app, relayPath+"?test=1", `{"email":""}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.RelayResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	require.True(t, body.OK)
	require.True(t, body.Test)
	require.Equal(t, 2, sender.callCount())
}

func TestRelayHandler_AdminFailureStillSucceeds(t *testing.T) {
	sender := &recordingSender{failures: map[string]error{
		"coach@files-coaching.com": &mailer.ProviderError{Detail: "domain not verified"},
	}}
	app := newRelayApp(relayConfig(), sender)

	resp := postJSON(t, app, relayPath, `{"email":"alice@example.com"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.RelayResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	require.True(t, body.OK)
	require.Contains(t, body.AdminError, "domain not verified")
	require.Empty(t, body.AdminID)
}

func TestRelayHandler_ClientFailureIs500(t *testing.T) {
	sender := &recordingSender{failures: map[string]error{
		"alice@example.com": &mailer.TransportError{Err: errors.New("dial tcp: connection refused")},
	}}
	app := newRelayApp(relayConfig(), sender)

	resp := postJSON(t, app, relayPath, `{"email":"alice@example.com"}`)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	requireCORS(t, resp)

	var body dto.RelayResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	require.False(t, body.OK)
	require.Contains(t, body.ClientError, "connection refused")
	require.Equal(t, "msg-coach@files-coaching.com", body.AdminID)
}

func TestRelayHandler_MethodNotAllowed(t *testing.T) {
	sender := &recordingSender{}
	app := newRelayApp(relayConfig(), sender)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		resp, err := app.Test(httptest.NewRequest(method, relayPath, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode, method)
		requireCORS(t, resp)
	}
	require.Zero(t, sender.callCount())
}

func TestRelayHandler_MissingCredentialComesFirst(t *testing.T) {
	cfg := relayConfig()
	cfg.ResendAPIKey = ""
	sender := &recordingSender{}
	app := newRelayApp(cfg, sender)

	req := httptest.NewRequest(http.MethodGet, relayPath, strings.NewReader("{not json"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	requireCORS(t, resp)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	require.Equal(t, "Server not configured", body.Error)
	require.Zero(t, sender.callCount())
}

func TestRelayHandler_Preflight(t *testing.T) {
	app := newRelayApp(relayConfig(), &recordingSender{})

	for _, target := range []string{relayPath, "/anything/else?x=1", "/?test=1"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodOptions, target, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode, target)
		requireCORS(t, resp)
		require.Empty(t, readBody(t, resp))
	}
}

func TestRelayHandler_ResponseContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "relay_response.schema.json"))
	require.NoError(t, err)
	schema, err := jsonschema.NewCompiler().Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)

	sender := &recordingSender{failures: map[string]error{"coach@files-coaching.com": &mailer.ProviderError{Detail: "x"}}}
	app := newRelayApp(relayConfig(), sender)

	cases := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPost, relayPath, `{"email":"alice@example.com"}`},
		{http.MethodPost, relayPath, `{"email":"bad"}`},
		{http.MethodPost, relayPath + "?test=1", `{}`},
		{http.MethodGet, relayPath, ``},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		var payload interface{}
		require.NoError(t, json.Unmarshal(readBody(t, resp), &payload))
		require.NoError(t, schema.Validate(payload), tc.body)
	}
}

func TestRelayHandler_CorrelationIDEchoed(t *testing.T) {
	app := newRelayApp(relayConfig(), &recordingSender{})

	req := httptest.NewRequest(http.MethodPost, relayPath, strings.NewReader(`{"email":"alice@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "req-123", resp.Header.Get("X-Correlation-ID"))
}
