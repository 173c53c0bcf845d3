package service

import (
	"github.com/files-coaching/contact-relay/internal/config"
	"github.com/files-coaching/contact-relay/internal/models"
)

// SelectMode ORs the configured test switch with the request's test query parameter.
// Unrecognised query values count as off.
func SelectMode(defaultTest bool, testQuery string) models.Mode {
	if defaultTest {
		return models.ModeTest
	}
	if on, err := config.ParseSwitch(testQuery); err == nil && on {
		return models.ModeTest
	}
	return models.ModeProduction
}

// Addressing is the sender/recipient plan for one request.
type Addressing struct {
	From            string
	ClientRecipient string
	AdminRecipient  string
	ClientReplyTo   string
	AdminReplyTo    string
}

// ResolveAddressing picks sender and recipients for the mode. In Test the sandbox sender is
// used and, when a test recipient is configured, both messages go there.
func ResolveAddressing(cfg config.Config, mode models.Mode, clientEmail string) Addressing {
	addressing := Addressing{
		From:            cfg.FromEmail,
		ClientRecipient: clientEmail,
		AdminRecipient:  cfg.AdminEmail,
		ClientReplyTo:   cfg.ReplyTo,
		AdminReplyTo:    clientEmail,
	}

	if mode.IsTest() {
		if cfg.TestFromEmail != "" {
			addressing.From = cfg.TestFromEmail
		}
		if cfg.TestRecipient != "" {
			addressing.ClientRecipient = cfg.TestRecipient
			addressing.AdminRecipient = cfg.TestRecipient
		}
	}

	if addressing.ClientRecipient == "" {
		addressing.ClientRecipient = addressing.AdminRecipient
	}
	if addressing.AdminReplyTo == "" || !IsValidEmail(addressing.AdminReplyTo) {
		addressing.AdminReplyTo = cfg.ReplyTo
	}

	return addressing
}
