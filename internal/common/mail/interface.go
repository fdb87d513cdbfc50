package mail

import "context"

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	// HTML is the rendered body. Text is optional and sent as the plain alternative.
	HTML string
	Text string
}

// Mailer sends outbound email.
type Mailer interface {
	// Send delivers msg and returns the provider message id.
	Send(ctx context.Context, msg Message) (string, error)
}
