// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"strings"

	"github.com/AzurNet/azurnet-go/internal/domain/chat"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock
// implementations in tests.
type Service interface {
	SendLeadNotification(session chat.Session) error
}

// ResendClient is the concrete implementation of the email Service using the
// Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	toEmail   string
}

// NewService creates a new email service client, returning the Service
// interface.
func NewService(apiKey, fromEmail, toEmail string) (Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required for lead notifications")
	}
	if toEmail == "" {
		return nil, fmt.Errorf("LEAD_EMAIL_TO is required for lead notifications")
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}, nil
}

// SendLeadNotification composes and sends the new-lead email for a finished
// chat session that captured contact details.
func (c *ResendClient) SendLeadNotification(session chat.Session) error {
	name := session.Name
	if name == "" {
		name = "Visiteur anonyme"
	}
	subject := fmt.Sprintf("Nouveau contact AzurNet : %s", name)

	var transcript strings.Builder
	for _, message := range session.Messages {
		label := "Visiteur"
		if message.Sender == chat.SenderAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&transcript, "<p><strong>%s :</strong> %s</p>", label, message.Text)
	}

	location := "inconnue"
	if session.Location != nil && session.Location.City != "" {
		location = fmt.Sprintf("%s, %s", session.Location.City, session.Location.Country)
	}

	htmlContent := fmt.Sprintf(
		`<h2>Nouveau contact via le chat</h2>
		<p><strong>Nom :</strong> %s</p>
		<p><strong>Téléphone :</strong> %s</p>
		<p><strong>Localisation :</strong> %s</p>
		<p><strong>Intention détectée :</strong> %s</p>
		<p><strong>Messages :</strong> %d</p>
		<hr>
		%s`,
		name, session.Phone, location, session.Intent, session.MessageCount, transcript.String(),
	)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("AzurNet <%s>", c.fromEmail),
		To:      []string{c.toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send lead notification email: %w", err)
	}
	return nil
}
