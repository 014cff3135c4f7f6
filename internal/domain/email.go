package domain

import "context"

// Mailer sends a single email. Implementations may use SES or a no-op sender.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named template into subject, html, and text bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// EventInvitationEmailData is the data for the play date invitation template.
type EventInvitationEmailData struct {
	Email         string
	OrganizerName string
	EventTitle    string
	StartsAt      string
}

// EmailService sends domain emails.
type EmailService interface {
	SendEventInvitation(ctx context.Context, data *EventInvitationEmailData) error
}
