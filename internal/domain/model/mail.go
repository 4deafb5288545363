package model

// MailMessage is an outbound email. HTMLBody is optional.
type MailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}
