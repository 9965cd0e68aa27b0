package graph

import (
	"context"

	"minitwitql/internal/account"
	"minitwitql/internal/models"
)

// LoginResolver is the root resolver of the login API.
type LoginResolver struct {
	accounts *account.Service
}

func (r *LoginResolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*tokenResolver, error) {
	t, err := r.accounts.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return &tokenResolver{t: t}, nil
}

func (r *LoginResolver) AddUser(ctx context.Context, args struct {
	Name     string
	Email    string
	Password string
}) (*userResolver, error) {
	u, err := r.accounts.Register(ctx, args.Name, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return &userResolver{u: u}, nil
}

type tokenResolver struct {
	t models.Token
}

func (t *tokenResolver) Token() string  { return t.t.Token }
func (t *tokenResolver) UserID() string { return t.t.UserID }
