package graph

import (
	"context"

	"github.com/dustin/go-humanize"
	graphql "github.com/graph-gophers/graphql-go"

	"minitwitql/internal/account"
	"minitwitql/internal/models"
	"minitwitql/internal/timeline"
)

// Resolver is the root resolver of the main API.
type Resolver struct {
	accounts *account.Service
	timeline *timeline.Service
}

func (r *Resolver) Messages(ctx context.Context) (*pageResolver, error) {
	return r.page(r.timeline.Messages(ctx))
}

func (r *Resolver) MoreMessages(ctx context.Context, args struct{ Cursor string }) (*pageResolver, error) {
	return r.page(r.timeline.MoreMessages(ctx, args.Cursor))
}

func (r *Resolver) MessagesByUserID(ctx context.Context, args struct{ ID string }) (*pageResolver, error) {
	return r.page(r.timeline.ByUser(ctx, args.ID))
}

func (r *Resolver) MoreMessagesByUserID(ctx context.Context, args struct {
	ID     string
	Cursor string
}) (*pageResolver, error) {
	return r.page(r.timeline.MoreByUser(ctx, args.ID, args.Cursor))
}

func (r *Resolver) Message(ctx context.Context, args struct{ ID string }) (*messageResolver, error) {
	m, err := r.timeline.Message(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return &messageResolver{root: r, m: m}, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ ID string }) (*userResolver, error) {
	u, err := r.accounts.ByID(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return &userResolver{root: r, u: u}, nil
}

func (r *Resolver) UserByEmail(ctx context.Context, args struct{ Email string }) (*userResolver, error) {
	u, err := r.accounts.ByEmail(ctx, args.Email)
	if err != nil {
		return nil, err
	}
	return &userResolver{root: r, u: u}, nil
}

func (r *Resolver) AddMessage(ctx context.Context, args struct {
	Text   string
	UserID string
}) (*messageResolver, error) {
	m, err := r.timeline.Add(ctx, args.Text, args.UserID)
	if err != nil {
		return nil, err
	}
	return &messageResolver{root: r, m: m}, nil
}

func (r *Resolver) RemoveMessage(ctx context.Context, args struct{ ID string }) (*removedResolver, error) {
	if err := r.timeline.Remove(ctx, args.ID); err != nil {
		return nil, err
	}
	return &removedResolver{id: args.ID}, nil
}

func (r *Resolver) page(p models.Page, err error) (*pageResolver, error) {
	if err != nil {
		return nil, err
	}
	return &pageResolver{root: r, p: p}, nil
}

type pageResolver struct {
	root *Resolver
	p    models.Page
}

func (p *pageResolver) Data() []*messageResolver {
	out := make([]*messageResolver, len(p.p.Data))
	for i, m := range p.p.Data {
		out[i] = &messageResolver{root: p.root, m: m}
	}
	return out
}

func (p *pageResolver) Cursor() string { return p.p.Cursor }

type messageResolver struct {
	root *Resolver
	m    models.Message
}

func (m *messageResolver) ID() graphql.ID { return graphql.ID(m.m.ID) }
func (m *messageResolver) Text() string   { return m.m.Text }
func (m *messageResolver) UserID() string { return m.m.UserID }
func (m *messageResolver) Date() string   { return m.m.Date }
func (m *messageResolver) Likes() int32   { return int32(m.m.Likes) }

// Posted renders the message age, e.g. "3 minutes ago".
func (m *messageResolver) Posted() string {
	t := m.m.PostedAt()
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

func (m *messageResolver) User(ctx context.Context) (*userResolver, error) {
	u, err := m.root.timeline.Author(ctx, m.m)
	if err != nil {
		return nil, err
	}
	return &userResolver{root: m.root, u: u}, nil
}

type userResolver struct {
	// root is nil for users returned by the login schema, which declares no
	// relational fields.
	root *Resolver
	u    models.User
}

func (u *userResolver) ID() graphql.ID   { return graphql.ID(u.u.ID) }
func (u *userResolver) Name() string     { return u.u.Name }
func (u *userResolver) Email() string    { return u.u.Email }
func (u *userResolver) Password() string { return u.u.Password }
func (u *userResolver) Avatar() string   { return u.u.Avatar() }

func (u *userResolver) Messages(ctx context.Context) (*pageResolver, error) {
	return u.root.page(u.root.timeline.ByUser(ctx, u.u.ID))
}

func (u *userResolver) MoreMessages(ctx context.Context, args struct{ Cursor string }) (*pageResolver, error) {
	return u.root.page(u.root.timeline.MoreByUser(ctx, u.u.ID, args.Cursor))
}

type removedResolver struct {
	id string
}

func (r *removedResolver) ID() graphql.ID { return graphql.ID(r.id) }
