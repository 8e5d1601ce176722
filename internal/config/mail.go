package config

import "os"

// MailConfig holds SMTP settings for the background email sender.  The HTTP
// layer never talks to SMTP directly; only the queue consumer reads this.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// LoadMailConfig reads SMTP settings from MAIL_* environment variables.
// Host and From are required; the rest have conventional defaults so local
// development against a mail catcher needs minimal setup.
func LoadMailConfig() MailConfig {
	return MailConfig{
		Host:     must("MAIL_HOST"),
		Port:     envInt("MAIL_PORT", 587),
		Username: os.Getenv("MAIL_USERNAME"),
		Password: os.Getenv("MAIL_PASSWORD"),
		From:     must("MAIL_FROM"),
		FromName: getenv("MAIL_FROM_NAME", "PhotoShare"),
	}
}
