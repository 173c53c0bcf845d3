package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	sendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "relay",
		Subsystem: "resend",
		Name:      "send_duration_seconds",
		Help:      "Duration of Resend send requests",
	})

	sendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "resend",
		Name:      "send_failures_total",
		Help:      "Number of Resend send failures by kind",
	}, []string{"kind"})
)

// ResendConfig defines configuration options for the Resend sender.
type ResendConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// ResendSender implements Sender against the Resend emails API.
type ResendSender struct {
	client *resend.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewResendSender builds a sender using the provided configuration.
func NewResendSender(cfg ResendConfig) (*ResendSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("resend api key is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resend.NewCustomClient(&http.Client{Timeout: cfg.Timeout}, cfg.APIKey)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid resend base url: %w", err)
		}
		client.BaseURL = parsed
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &ResendSender{
		client: client,
		tracer: otel.Tracer("github.com/files-coaching/contact-relay/pkg/mailer/resend"),
		logger: logger.With().Str("component", "resend_sender").Logger(),
	}, nil
}

// Send issues a single request to Resend. It never retries.
func (s *ResendSender) Send(parent context.Context, email Email) (string, error) {
	ctx, span := s.tracer.Start(parent, "resend.send", trace.WithAttributes(
		attribute.Int("recipients", len(email.To)),
	))
	defer span.End()

	request := &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	}

	start := time.Now()
	sent, err := s.client.Emails.SendWithContext(ctx, request)
	sendDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		classified := classifyError(err)
		kind := "provider"
		var transportErr *TransportError
		if errors.As(classified, &transportErr) {
			kind = "transport"
		}
		sendFailures.WithLabelValues(kind).Inc()
		span.RecordError(classified)
		span.SetStatus(codes.Error, classified.Error())
		s.logger.Debug().Err(err).Str("kind", kind).Msg("resend send failed")
		return "", classified
	}

	if sent == nil || sent.Id == "" {
		sendFailures.WithLabelValues("provider").Inc()
		err := &ProviderError{Detail: "response carried no delivery id"}
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("resend.id", sent.Id))
	span.SetStatus(codes.Ok, "sent")
	return sent.Id, nil
}

func classifyError(err error) error {
	var (
		urlErr *url.Error
		netErr net.Error
	)
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransportError{Err: err}
	}
	return &ProviderError{Detail: strings.TrimSpace(strings.TrimPrefix(err.Error(), "[ERROR]:"))}
}
