package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the relay service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	ResendAPIKey    string
	ResendBaseURL   string
	SendTest        bool
	AdminEmail      string
	FromEmail       string
	TestFromEmail   string
	TestRecipient   string
	ReplyTo         string
	BrandName       string
	ProviderTimeout time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// HasCredential reports whether the provider API key is configured.
func (c Config) HasCredential() bool {
	return strings.TrimSpace(c.ResendAPIKey) != ""
}

// Load reads configuration values from environment variables and optional .env file.
// A missing provider key is not a load error: requests fail with 500 until it is set.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Files Coaching Relay")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("send_test", "off")
	v.SetDefault("admin.email", "contact@files-coaching.com")
	v.SetDefault("from.email", "Files Coaching <contact@files-coaching.com>")
	v.SetDefault("test.from_email", "Files Coaching <onboarding@resend.dev>")
	v.SetDefault("brand.name", "Files Coaching")
	v.SetDefault("provider.timeout", "10s")

	timeoutString := v.GetString("provider.timeout")
	if timeoutString == "" {
		timeoutString = "10s"
	}

	timeout, err := time.ParseDuration(timeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid provider timeout: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sendTest, err := ParseSwitch(v.GetString("send_test"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SEND_TEST value: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		ResendAPIKey:    strings.TrimSpace(v.GetString("resend.api_key")),
		ResendBaseURL:   strings.TrimSpace(v.GetString("resend.base_url")),
		SendTest:        sendTest,
		AdminEmail:      strings.TrimSpace(v.GetString("admin.email")),
		FromEmail:       strings.TrimSpace(v.GetString("from.email")),
		TestFromEmail:   strings.TrimSpace(v.GetString("test.from_email")),
		TestRecipient:   strings.TrimSpace(v.GetString("test.recipient")),
		ReplyTo:         strings.TrimSpace(v.GetString("reply.to")),
		BrandName:       v.GetString("brand.name"),
		ProviderTimeout: timeout,
	}

	if cfg.ReplyTo == "" {
		cfg.ReplyTo = cfg.FromEmail
	}

	if cfg.AdminEmail == "" {
		return Config{}, fmt.Errorf("admin email must be provided")
	}

	return cfg, nil
}

// ParseSwitch interprets on/off style flags used by environment switches and query parameters.
func ParseSwitch(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes", "y":
		return true, nil
	case "", "0", "false", "off", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognised switch %q", value)
	}
}
