package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds SMTP connection details.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends transactional email over SMTP.
type Mailer struct {
	cfg  Config
	auth smtp.Auth
}

// New creates a new Mailer.
func New(cfg Config) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Mailer{cfg: cfg, auth: auth}
}

// Send delivers a plain-text email to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		return fmt.Errorf("mailer is not configured")
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, m.auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendBookingConfirmation sends the booking confirmed email.
func (m *Mailer) SendBookingConfirmation(to, userName, orderID, carName, startTime, endTime string, total float64, trackingID string) error {
	subject := fmt.Sprintf("Booking confirmed - %s", carName)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour booking %s for %s is confirmed.\n\nPickup: %s\nReturn: %s\nAmount paid: %.2f\nPayment reference: %s\n\nDrive safe!\n",
		userName, orderID, carName, startTime, endTime, total, trackingID,
	)
	return m.Send(to, subject, body)
}

// SendKYCDecision sends the KYC approval or rejection email.
func (m *Mailer) SendKYCDecision(to, userName string, approved bool, reason string) error {
	if approved {
		return m.Send(to, "KYC verification approved",
			fmt.Sprintf("Hi %s,\n\nYour identity documents have been verified. You can now book cars.\n", userName))
	}
	return m.Send(to, "KYC verification rejected",
		fmt.Sprintf("Hi %s,\n\nYour identity documents were rejected: %s\nPlease upload them again.\n", userName, reason))
}
