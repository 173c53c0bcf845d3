package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/files-coaching/contact-relay/internal/config"
	"github.com/files-coaching/contact-relay/internal/dto"
	"github.com/files-coaching/contact-relay/internal/models"
	"github.com/files-coaching/contact-relay/internal/observability"
)

var (
	// ErrMissingCredential indicates the provider API key is not configured.
	ErrMissingCredential = errors.New("missing provider credential")
	// ErrInvalidEmail indicates the submitter address is missing or malformed.
	ErrInvalidEmail = errors.New("invalid email")
)

// RelayResult is the outcome of relaying one submission.
type RelayResult struct {
	Test     bool
	Status   int
	Response dto.RelayResponse
}

// RelayService exposes the submission relay workflow.
type RelayService interface {
	Relay(ctx context.Context, req dto.RelayRequest) (RelayResult, error)
}

type relayService struct {
	cfg        config.Config
	normalizer *SubmissionNormalizer
	validator  *validator.Validate
	renderer   *TemplateRenderer
	dispatcher *Dispatcher
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewRelayService constructs the relay workflow.
func NewRelayService(cfg config.Config, normalizer *SubmissionNormalizer, validator *validator.Validate, renderer *TemplateRenderer, dispatcher *Dispatcher, logger zerolog.Logger) RelayService {
	return &relayService{
		cfg:        cfg,
		normalizer: normalizer,
		validator:  validator,
		renderer:   renderer,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "relay_service").Logger(),
		tracer:     otel.Tracer("github.com/files-coaching/contact-relay/internal/service/relay"),
	}
}

func (s *relayService) Relay(ctx context.Context, req dto.RelayRequest) (RelayResult, error) {
	ctx, span := s.tracer.Start(ctx, "relay.submit")
	defer span.End()

	mode := SelectMode(s.cfg.SendTest, req.TestQuery)
	result := RelayResult{Test: mode.IsTest()}
	span.SetAttributes(attribute.String("relay.mode", mode.String()))

	submission := s.normalizer.Normalize(req.ContentType, req.Body)

	if !mode.IsTest() {
		if err := s.validator.Struct(submission); err != nil {
			span.SetStatus(codes.Error, "invalid email")
			observability.Submissions().WithLabelValues(mode.String(), "invalid_email").Inc()
			return result, fmt.Errorf("%w: %v", ErrInvalidEmail, err)
		}
	}

	rendered, err := s.renderer.Render(submission, mode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		observability.Submissions().WithLabelValues(mode.String(), "error").Inc()
		return result, err
	}

	addressing := ResolveAddressing(s.cfg, mode, submission.Email)
	client := models.Message{
		From:    addressing.From,
		To:      addressing.ClientRecipient,
		ReplyTo: addressing.ClientReplyTo,
		Subject: rendered.Client.Subject,
		HTML:    rendered.Client.HTML,
		Text:    rendered.Client.Text,
	}
	admin := models.Message{
		From:    addressing.From,
		To:      addressing.AdminRecipient,
		ReplyTo: addressing.AdminReplyTo,
		Subject: rendered.Admin.Subject,
		HTML:    rendered.Admin.HTML,
		Text:    rendered.Admin.Text,
	}

	clientOutcome, adminOutcome := s.dispatcher.Dispatch(ctx, client, admin)
	result.Status, result.Response = AssembleResponse(result.Test, clientOutcome, adminOutcome)

	outcomeLabel := "delivered"
	if !clientOutcome.OK() {
		outcomeLabel = "client_failed"
		span.SetStatus(codes.Error, "client delivery failed")
	} else if !adminOutcome.OK() {
		outcomeLabel = "admin_failed"
		span.SetStatus(codes.Ok, "client delivered, admin failed")
	} else {
		span.SetStatus(codes.Ok, "delivered")
	}
	observability.Submissions().WithLabelValues(mode.String(), outcomeLabel).Inc()

	s.logger.Info().
		Str("mode", mode.String()).
		Str("email", maskEmailAddress(submission.Email)).
		Str("client_status", string(clientOutcome.Status)).
		Str("admin_status", string(adminOutcome.Status)).
		Msg("submission relayed")

	return result, nil
}
