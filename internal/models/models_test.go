package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPageCursor(t *testing.T) {
	p := NewPage(nil)
	assert.Empty(t, p.Cursor)
	assert.NotNil(t, p.Data)
	assert.Len(t, p.Data, 0)

	p = NewPage([]Message{
		{ID: "a", Date: "2024-01-01T00:00:00.000000001Z"},
		{ID: "b", Date: "2024-01-01T00:00:00.000000002Z"},
	})
	assert.Equal(t, "2024-01-01T00:00:00.000000002Z", p.Cursor)
}

func TestFormatDateSortsLexically(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := FormatDate(base)
	later := FormatDate(base.Add(time.Nanosecond))
	muchLater := FormatDate(base.Add(10 * time.Hour))

	assert.Less(t, earlier, later)
	assert.Less(t, later, muchLater)
	assert.Len(t, earlier, len(muchLater))
}

func TestPostedAtRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 15, 123456789, time.UTC)
	m := Message{Date: FormatDate(now)}
	assert.True(t, now.Equal(m.PostedAt()))

	assert.True(t, Message{Date: "yesterday"}.PostedAt().IsZero())
}

func TestAvatarNormalizesEmail(t *testing.T) {
	a := User{Email: "Foo@Example.com "}.Avatar()
	b := User{Email: "foo@example.com"}.Avatar()
	assert.Equal(t, a, b)
	assert.Contains(t, a, "https://www.gravatar.com/avatar/")
}
