package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/files-coaching/contact-relay/internal/config"
	"github.com/files-coaching/contact-relay/internal/dto"
	"github.com/files-coaching/contact-relay/pkg/mailer"
)

func newTestRelay(cfg config.Config, sender mailer.Sender) RelayService {
	return NewRelayService(
		cfg,
		NewSubmissionNormalizer(testLogger()),
		NewValidator(),
		NewTemplateRenderer(cfg.BrandName),
		NewDispatcher(sender, testLogger()),
		testLogger(),
	)
}

func jsonRequest(body, testQuery string) dto.RelayRequest {
	return dto.RelayRequest{ContentType: "application/json", Body: []byte(body), TestQuery: testQuery}
}

func TestRelaySuccess(t *testing.T) {
	cfg := testConfig()
	sender := &stubSender{}

	result, err := newTestRelay(cfg, sender).Relay(context.Background(), jsonRequest(`{"email":"alice@example.com","prenom":"Alice"}`, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.Status)
	require.False(t, result.Test)
	require.Equal(t, dto.RelayResponse{OK: true, ClientID: "id-alice@example.com", AdminID: "id-" + cfg.AdminEmail}, result.Response)

	emails := sender.emails()
	require.Len(t, emails, 2)
	for _, email := range emails {
		require.Equal(t, cfg.FromEmail, email.From)
		if email.To[0] == cfg.AdminEmail {
			require.Equal(t, "alice@example.com", email.ReplyTo)
		} else {
			require.Equal(t, cfg.ReplyTo, email.ReplyTo)
		}
	}
}

func TestRelayRejectsInvalidEmailInProduction(t *testing.T) {
	for _, body := range []string{`{"email":""}`, `{"email":"not-an-email"}`, `{}`, `{broken`} {
		sender := &stubSender{}
		result, err := newTestRelay(testConfig(), sender).Relay(context.Background(), jsonRequest(body, ""))
		require.ErrorIs(t, err, ErrInvalidEmail, body)
		require.False(t, result.Test)
		require.Empty(t, sender.emails(), body)
	}
}

func TestRelayTestModeBypassesValidation(t *testing.T) {
	cfg := testConfig()
	sender := &stubSender{}

	result, err := newTestRelay(cfg, sender).Relay(context.Background(), jsonRequest(`{"email":""}`, "1"))
	require.NoError(t, err)
	require.True(t, result.Test)
	require.Equal(t, http.StatusOK, result.Status)
	require.True(t, result.Response.Test)

	emails := sender.emails()
	require.Len(t, emails, 2)
	for _, email := range emails {
		require.Equal(t, cfg.TestFromEmail, email.From)
		require.Contains(t, email.Subject, "[TEST]")
	}
}

func TestRelayTestModeFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.SendTest = true
	cfg.TestRecipient = "sandbox@example.com"
	sender := &stubSender{}

	result, err := newTestRelay(cfg, sender).Relay(context.Background(), jsonRequest(`{"email":"real@customer.com"}`, ""))
	require.NoError(t, err)
	require.True(t, result.Test)
	for _, email := range sender.emails() {
		require.Equal(t, []string{"sandbox@example.com"}, email.To)
	}
}

func TestRelayAdminFailureStillOK(t *testing.T) {
	cfg := testConfig()
	sender := &stubSender{results: map[string]error{cfg.AdminEmail: &mailer.ProviderError{Detail: "nope"}}}

	result, err := newTestRelay(cfg, sender).Relay(context.Background(), jsonRequest(`{"email":"alice@example.com"}`, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.Status)
	require.True(t, result.Response.OK)
	require.Contains(t, result.Response.AdminError, "nope")
	require.Equal(t, "id-alice@example.com", result.Response.ClientID)
}

func TestRelayClientFailureIs500(t *testing.T) {
	cfg := testConfig()
	sender := &stubSender{results: map[string]error{"alice@example.com": &mailer.ProviderError{Detail: "bounced"}}}

	result, err := newTestRelay(cfg, sender).Relay(context.Background(), jsonRequest(`{"email":"alice@example.com"}`, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, result.Status)
	require.False(t, result.Response.OK)
	require.Contains(t, result.Response.ClientError, "bounced")
	require.Equal(t, "id-"+cfg.AdminEmail, result.Response.AdminID)
}

func TestRelayAcceptsMultiValueEquipment(t *testing.T) {
	sender := &stubSender{}

	result, err := newTestRelay(testConfig(), sender).Relay(context.Background(), jsonRequest(`{"email":"alice@example.com","materiel":["a","b"]}`, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.Status)
	require.True(t, result.Response.OK)

	emails := sender.emails()
	require.Len(t, emails, 2)
	for _, email := range emails {
		require.Contains(t, email.Text, "Matériel : a, b")
	}
}
