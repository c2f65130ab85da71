package domain

import "time"

// Session is what a verified token asserts.
type Session struct {
	UserID            string
	TemporaryPassword bool
	ExpiresAt         time.Time
}

// Message is an outbound transactional email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}
