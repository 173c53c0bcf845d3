package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/files-coaching/contact-relay/internal/config"
	"github.com/files-coaching/contact-relay/pkg/mailer"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testConfig() config.Config {
	return config.Config{
		AppName:       "relay-test",
		AppEnv:        "test",
		ResendAPIKey:  "re_test",
		AdminEmail:    "coach@files-coaching.com",
		FromEmail:     "Files Coaching <contact@files-coaching.com>",
		TestFromEmail: "Files Coaching <onboarding@resend.dev>",
		ReplyTo:       "Files Coaching <contact@files-coaching.com>",
		BrandName:     "Files Coaching",
	}
}

// stubSender answers per recipient; recipients without an entry are delivered.
type stubSender struct {
	mu      sync.Mutex
	sent    []mailer.Email
	results map[string]error
	panicOn string
}

func (s *stubSender) Send(_ context.Context, email mailer.Email) (string, error) {
	s.mu.Lock()
	s.sent = append(s.sent, email)
	s.mu.Unlock()

	to := ""
	if len(email.To) > 0 {
		to = email.To[0]
	}
	if s.panicOn != "" && to == s.panicOn {
		panic("boom")
	}
	if err, ok := s.results[to]; ok && err != nil {
		return "", err
	}
	return "id-" + to, nil
}

func (s *stubSender) emails() []mailer.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mailer.Email, len(s.sent))
	copy(out, s.sent)
	return out
}
