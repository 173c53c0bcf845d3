package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/files-coaching/contact-relay/internal/models"
	"github.com/files-coaching/contact-relay/internal/observability"
	"github.com/files-coaching/contact-relay/pkg/mailer"
)

const (
	messageClient = "client"
	messageAdmin  = "admin"
)

// Dispatcher sends the client and admin messages concurrently and waits for both to settle.
type Dispatcher struct {
	sender mailer.Sender
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewDispatcher constructs a dispatcher over the given sender.
func NewDispatcher(sender mailer.Sender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: logger.With().Str("component", "dispatcher").Logger(),
		tracer: otel.Tracer("github.com/files-coaching/contact-relay/internal/service/dispatcher"),
	}
}

// Dispatch makes exactly one delivery attempt per message. A failure or panic in one branch
// never cancels the other.
func (d *Dispatcher) Dispatch(ctx context.Context, client, admin models.Message) (models.DispatchOutcome, models.DispatchOutcome) {
	var (
		wg            conc.WaitGroup
		clientOutcome models.DispatchOutcome
		adminOutcome  models.DispatchOutcome
	)

	wg.Go(func() { clientOutcome = d.attempt(ctx, messageClient, client) })
	wg.Go(func() { adminOutcome = d.attempt(ctx, messageAdmin, admin) })
	wg.Wait()

	return clientOutcome, adminOutcome
}

func (d *Dispatcher) attempt(ctx context.Context, kind string, message models.Message) models.DispatchOutcome {
	ctx, span := d.tracer.Start(ctx, "relay.dispatch", trace.WithAttributes(attribute.String("message", kind)))
	defer span.End()

	var (
		catcher panics.Catcher
		outcome models.DispatchOutcome
	)
	catcher.Try(func() {
		id, err := d.sender.Send(ctx, mailer.Email{
			From:    message.From,
			To:      []string{message.To},
			ReplyTo: message.ReplyTo,
			Subject: message.Subject,
			HTML:    message.HTML,
			Text:    message.Text,
		})
		outcome = classifyDelivery(id, err)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		outcome = models.TransportFailure(fmt.Sprintf("sender panicked: %v", recovered.Value))
	}

	observability.DispatchOutcomes().WithLabelValues(kind, string(outcome.Status)).Inc()

	logger := d.logger.With().Str("message", kind).Str("to", maskEmailAddress(message.To)).Logger()
	if outcome.OK() {
		span.SetStatus(codes.Ok, "delivered")
		logger.Info().Str("delivery_id", outcome.ID).Msg("message delivered")
	} else {
		span.SetStatus(codes.Error, outcome.Detail)
		logger.Warn().Str("status", string(outcome.Status)).Str("detail", outcome.Detail).Msg("message delivery failed")
	}

	return outcome
}

func classifyDelivery(id string, err error) models.DispatchOutcome {
	if err == nil {
		return models.Delivered(id)
	}

	var transportErr *mailer.TransportError
	if errors.As(err, &transportErr) {
		return models.TransportFailure(transportErr.Error())
	}
	return models.ProviderFailure(err.Error())
}
