package mailer

import (
	"fmt"
	"net/smtp"
)

// Sender delivers a notification to a single address. Services depend on this
// interface so tests can substitute a recording fake.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender sends HTML mail over SMTP with STARTTLS and authentication.
type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPSender creates a sender for the given SMTP account. from is the
// display name shown to recipients.
func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

// Send delivers one message. smtp.SendMail upgrades to TLS via STARTTLS when
// the server advertises it.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.from, s.user, to, subject, htmlBody,
	)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	if err := smtp.SendMail(addr, auth, s.user, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// OTPHTML builds the body carrying a signup verification code.
func OTPHTML(code string) string {
	return fmt.Sprintf(`
    <div style='font-family:Inter,system-ui,Segoe UI,Arial'>
      <h2>Your signup verification code</h2>
      <p>Enter the 6-digit code below within 3 minutes.</p>
      <div style='font-weight:700;font-size:28px;letter-spacing:6px'>%s</div>
    </div>`, code)
}

// VerificationHTML builds the body carrying a verification link.
func VerificationHTML(link string) string {
	return fmt.Sprintf(`
    <div style='font-family:Inter,system-ui,Segoe UI,Arial'>
      <h2>Please verify your email</h2>
      <p>Click the button below to finish verifying your email address.</p>
      <p><a href='%s' style='display:inline-block;padding:10px 16px;background:#111;color:#fff;
      border-radius:8px;text-decoration:none'>Verify email</a></p>
      <p style='color:#666;font-size:13px'>If the button does not open, copy the link into your browser:<br>%s</p>
    </div>`, link, link)
}
