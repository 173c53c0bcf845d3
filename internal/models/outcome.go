package models

// OutcomeStatus classifies a single delivery attempt.
type OutcomeStatus string

const (
	OutcomeDelivered      OutcomeStatus = "delivered"
	OutcomeProviderError  OutcomeStatus = "provider_error"
	OutcomeTransportError OutcomeStatus = "transport_error"
)

// DispatchOutcome is the result of attempting delivery of one message.
type DispatchOutcome struct {
	Status OutcomeStatus
	ID     string
	Detail string
}

// Delivered builds a successful outcome.
func Delivered(id string) DispatchOutcome {
	return DispatchOutcome{Status: OutcomeDelivered, ID: id}
}

// ProviderFailure builds an outcome for an error payload returned by the provider.
func ProviderFailure(detail string) DispatchOutcome {
	return DispatchOutcome{Status: OutcomeProviderError, Detail: detail}
}

// TransportFailure builds an outcome for a call that never produced a provider answer.
func TransportFailure(detail string) DispatchOutcome {
	return DispatchOutcome{Status: OutcomeTransportError, Detail: detail}
}

// OK reports whether the message was accepted by the provider.
func (o DispatchOutcome) OK() bool {
	return o.Status == OutcomeDelivered
}

// Message is one rendered email ready for dispatch.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}
