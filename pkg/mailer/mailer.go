// Package mailer wraps the transactional email provider used to relay contact submissions.
package mailer

import (
	"context"
	"fmt"
)

// Email is one outbound message.
type Email struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers an Email and returns the provider's delivery identifier.
// Failures are either *ProviderError or *TransportError.
type Sender interface {
	Send(ctx context.Context, email Email) (string, error)
}

// ProviderError is an error payload returned by the provider.
type ProviderError struct {
	Detail string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider rejected message: %s", e.Detail)
}

// TransportError means the call never produced a provider answer.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
