package models

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the fixed-width layout of Message.Date. Dates in this layout
// sort lexically in the same order as the instants they describe.
const DateLayout = "2006-01-02T15:04:05.000000000Z"

// User represents a registered user.
type User struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"password" bson:"password"`
}

// Avatar returns the gravatar URL for the user's email.
func (u User) Avatar() string {
	h := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(u.Email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon&s=48", h)
}

// Message represents a message posted by a user.
type Message struct {
	ID     string `json:"id" bson:"_id"`
	Text   string `json:"text" bson:"text"`
	UserID string `json:"userId" bson:"userId"`
	Date   string `json:"date" bson:"date"`
	Likes  int    `json:"likes" bson:"likes"`
}

// PostedAt parses Date. The zero time is returned for malformed dates.
func (m Message) PostedAt() time.Time {
	t, err := time.Parse(DateLayout, m.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Page is one slice of an ascending-by-date message listing. Cursor is the
// Date of the last message, or "" when Data is empty.
type Page struct {
	Data   []Message `json:"data"`
	Cursor string    `json:"cursor"`
}

// NewPage builds a Page from messages already sorted by Date.
func NewPage(msgs []Message) Page {
	if msgs == nil {
		msgs = []Message{}
	}
	p := Page{Data: msgs}
	if n := len(msgs); n > 0 {
		p.Cursor = msgs[n-1].Date
	}
	return p
}

// Token is a freshly issued bearer token.
type Token struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
