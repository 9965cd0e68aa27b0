// Package timeline lists, pages, posts and removes messages, and resolves
// the relations between messages and their authors.
//
// Every listing is ascending by date and holds at most PageSize messages.
// A page's cursor is the date of its last message; passing it back returns
// the messages strictly after it. The same forward direction applies to the
// global timeline and to a single user's messages.
//
// Dates come from one Clock per Service, so paging is exact only while a
// single process writes to the store. Messages that share a date across
// writers can be skipped at a page boundary.
package timeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"minitwitql/internal/apperr"
	"minitwitql/internal/models"
	"minitwitql/internal/store"
)

// PageSize bounds every listing. Clients cannot change it.
const PageSize = 5

// Service implements the message operations.
type Service struct {
	messages store.Messages
	users    store.Users
	clock    *Clock
	log      *zap.Logger
	newID    func() string
}

// New returns a Service over the given collections.
func New(messages store.Messages, users store.Users, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		messages: messages,
		users:    users,
		clock:    NewClock(),
		log:      log,
		newID:    uuid.NewString,
	}
}

// Messages returns the first page of the global timeline.
func (s *Service) Messages(ctx context.Context) (models.Page, error) {
	return s.page(ctx, store.Query{})
}

// MoreMessages returns the page of the global timeline following cursor.
func (s *Service) MoreMessages(ctx context.Context, cursor string) (models.Page, error) {
	return s.page(ctx, store.Query{After: cursor})
}

// ByUser returns the first page of userID's messages.
func (s *Service) ByUser(ctx context.Context, userID string) (models.Page, error) {
	return s.page(ctx, store.Query{UserID: userID})
}

// MoreByUser returns the page of userID's messages following cursor.
func (s *Service) MoreByUser(ctx context.Context, userID, cursor string) (models.Page, error) {
	return s.page(ctx, store.Query{UserID: userID, After: cursor})
}

func (s *Service) page(ctx context.Context, q store.Query) (models.Page, error) {
	q.Limit = PageSize
	msgs, err := s.messages.List(ctx, q)
	if err != nil {
		return models.Page{}, s.internal(err, "messages.list")
	}
	return models.NewPage(msgs), nil
}

// Message returns the message with id.
func (s *Service) Message(ctx context.Context, id string) (models.Message, error) {
	m, err := s.messages.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Message{}, apperr.NewNotFound("Message", "id", id)
	}
	if err != nil {
		return models.Message{}, s.internal(err, "messages.byID")
	}
	return m, nil
}

// Author resolves the user who posted m. A dangling userId is NotFound.
func (s *Service) Author(ctx context.Context, m models.Message) (models.User, error) {
	u, err := s.users.ByID(ctx, m.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NewNotFound("User", "id", m.UserID)
	}
	if err != nil {
		return models.User{}, s.internal(err, "users.byID")
	}
	return u, nil
}

// Add posts text as userID and returns the stored message. The author is not
// checked for existence.
func (s *Service) Add(ctx context.Context, text, userID string) (models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, apperr.NewValidation("You have to enter a message")
	}
	if userID == "" {
		return models.Message{}, apperr.NewValidation("You have to enter a user id")
	}
	m := models.Message{
		ID:     s.newID(),
		Text:   text,
		UserID: userID,
		Date:   s.clock.Stamp(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return models.Message{}, s.internal(err, "messages.create")
	}
	s.log.Debug("message recorded", zap.String("message_id", m.ID), zap.String("user_id", userID))
	return m, nil
}

// Remove deletes the message with id.
func (s *Service) Remove(ctx context.Context, id string) error {
	err := s.messages.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NewNotFound("Message", "id", id)
	}
	if err != nil {
		return s.internal(err, "messages.delete")
	}
	return nil
}

func (s *Service) internal(err error, op string) error {
	s.log.Error("store call failed", zap.String("op", op), zap.Error(err))
	return apperr.Wrap(err, op)
}
