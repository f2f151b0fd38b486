package models

import "time"

type User struct {
	Email string
	Name  string
}

type NoticeKind string

const (
	NoticeSuccess     NoticeKind = "success"
	NoticeDestructive NoticeKind = "destructive"
)

// Notice is a transient message shown once on the next rendered page.
type Notice struct {
	Kind        NoticeKind
	Title       string
	Description string
}

// Session is a read-only snapshot of a session shell.
type Session struct {
	ID         string
	User       *User
	Pending    bool
	CreatedAt  time.Time
	LastSeenAt time.Time
}

func (s Session) Authenticated() bool {
	return s.User != nil
}
