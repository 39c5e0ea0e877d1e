package email

import "context"

type EmailProvider interface {
	SendEmail(ctx context.Context, request *EmailRequest) error
	Name() string
}

type EmailRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyText string `json:"body_text"`
	BodyHTML string `json:"body_html,omitempty"`
}
