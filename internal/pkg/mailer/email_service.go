package mailer

import (
	"errors"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

var ErrMailerDisabled = errors.New("smtp host not configured")

type IEmailService interface {
	SendWelcome(toEmail, username string) error
	SendEnrollmentConfirmation(toEmail, username, courseTitle, courseURL string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	var d *gomail.Dialer
	if host != "" {
		d = gomail.NewDialer(host, port, username, password)
	}
	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	if s.dialer == nil {
		return ErrMailerDisabled
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendWelcome(toEmail, username string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s!</h2>
			<p>Your account is ready. Browse the catalog and enroll in your first course.</p>
		</div>
	`, html.EscapeString(username))
	return s.send(toEmail, "Welcome to "+s.senderName, body)
}

func (s *emailService) SendEnrollmentConfirmation(toEmail, username, courseTitle, courseURL string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>You're enrolled!</h2>
			<p>Hi %s, you now have access to <strong>%s</strong>.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Start learning</a>
		</div>
	`, html.EscapeString(username), html.EscapeString(courseTitle), html.EscapeString(courseURL))
	return s.send(toEmail, "Enrollment confirmed: "+courseTitle, body)
}
