package domain

import "time"

// IncomingMessage is one user turn received from a transport.
type IncomingMessage struct {
	ChatID    int64
	MessageID int
	SenderID  int64
	Username  string
	Text      string
	Command   string // bot command without the leading slash, empty for plain text
	Timestamp time.Time
}

// IsCommand reports whether the message is a bot command such as /start.
func (m IncomingMessage) IsCommand() bool { return m.Command != "" }
