// Package sqlite stores users and messages in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"minitwitql/internal/models"
	"minitwitql/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS user (
	user_id TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	email   TEXT NOT NULL,
	pw_hash TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS user_email ON user (email COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS message (
	message_id TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL,
	text       TEXT NOT NULL,
	pub_date   TEXT NOT NULL,
	likes      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS message_pub_date ON message (pub_date);
CREATE INDEX IF NOT EXISTS message_author_pub_date ON message (author_id, pub_date);
`

// Store implements store.Store on top of database/sql.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite: open %s", path)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlite: apply schema")
	}
	return &Store{db: db}, nil
}

// Users returns the users table.
func (s *Store) Users() store.Users { return userStore{s.db} }

// Messages returns the messages table.
func (s *Store) Messages() store.Messages { return messageStore{s.db} }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type userStore struct{ db *sql.DB }

func (u userStore) Create(ctx context.Context, user models.User) error {
	_, err := u.db.ExecContext(ctx,
		"INSERT INTO user (user_id, name, email, pw_hash) VALUES (?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.Password)
	return errors.Wrap(err, "sqlite: insert user")
}

func (u userStore) ByID(ctx context.Context, id string) (models.User, error) {
	return u.scanOne(ctx, "SELECT user_id, name, email, pw_hash FROM user WHERE user_id = ?", id)
}

func (u userStore) ByEmail(ctx context.Context, email string) (models.User, error) {
	return u.scanOne(ctx,
		"SELECT user_id, name, email, pw_hash FROM user WHERE email = ? COLLATE NOCASE LIMIT 1", email)
}

func (u userStore) scanOne(ctx context.Context, query string, arg string) (models.User, error) {
	var user models.User
	err := u.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password)
	if err == sql.ErrNoRows {
		return models.User{}, store.ErrNotFound
	}
	if err != nil {
		return models.User{}, errors.Wrap(err, "sqlite: select user")
	}
	return user, nil
}

type messageStore struct{ db *sql.DB }

func (m messageStore) Create(ctx context.Context, msg models.Message) error {
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO message (message_id, author_id, text, pub_date, likes) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.UserID, msg.Text, msg.Date, msg.Likes)
	return errors.Wrap(err, "sqlite: insert message")
}

func (m messageStore) ByID(ctx context.Context, id string) (models.Message, error) {
	var msg models.Message
	err := m.db.QueryRowContext(ctx,
		"SELECT message_id, author_id, text, pub_date, likes FROM message WHERE message_id = ?", id).
		Scan(&msg.ID, &msg.UserID, &msg.Text, &msg.Date, &msg.Likes)
	if err == sql.ErrNoRows {
		return models.Message{}, store.ErrNotFound
	}
	if err != nil {
		return models.Message{}, errors.Wrap(err, "sqlite: select message")
	}
	return msg, nil
}

func (m messageStore) Delete(ctx context.Context, id string) error {
	res, err := m.db.ExecContext(ctx, "DELETE FROM message WHERE message_id = ?", id)
	if err != nil {
		return errors.Wrap(err, "sqlite: delete message")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "sqlite: delete message")
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m messageStore) List(ctx context.Context, q store.Query) ([]models.Message, error) {
	query, args := listQuery(q)
	return m.queryMessages(ctx, query, args...)
}

// listQuery renders q as a SELECT ordered by pub_date.
func listQuery(q store.Query) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if q.UserID != "" {
		where = append(where, "author_id = ?")
		args = append(args, q.UserID)
	}
	if q.After != "" {
		where = append(where, "pub_date > ?")
		args = append(args, q.After)
	}

	var b strings.Builder
	b.WriteString("SELECT message_id, author_id, text, pub_date, likes FROM message")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY pub_date ASC, message_id ASC")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args
}

func (m messageStore) queryMessages(ctx context.Context, query string, args ...interface{}) ([]models.Message, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: list messages")
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Text, &msg.Date, &msg.Likes); err != nil {
			return nil, errors.Wrap(err, "sqlite: scan message")
		}
		messages = append(messages, msg)
	}
	return messages, errors.Wrap(rows.Err(), "sqlite: list messages")
}
