package config

import "gopkg.in/yaml.v3"

// Sanitize returns a copy with secrets masked.
func Sanitize(cfg *Config) *Config {
	c := *cfg
	if c.Telegram.Token != "" {
		c.Telegram.Token = maskString(c.Telegram.Token)
	}
	if c.Instagram.SessionID != "" {
		c.Instagram.SessionID = maskString(c.Instagram.SessionID)
	}
	if c.Tracing.Headers != "" {
		c.Tracing.Headers = "***"
	}
	return &c
}

// Dump renders the sanitized config as YAML.
func Dump(cfg *Config) ([]byte, error) {
	return yaml.Marshal(Sanitize(cfg))
}

// maskString keeps the first and last four characters.
func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
