package remote

import (
	"context"
	"net/http"

	"shopsync/internal/domain"
)

type Users struct{ c *Client }

func NewUsers(c *Client) *Users { return &Users{c: c} }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (u *Users) Login(ctx context.Context, email, password string) (*domain.User, error) {
	var out domain.User
	err := u.c.do(ctx, http.MethodPost, "/api/users/login", loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *Users) Register(ctx context.Context, in *domain.User) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, http.MethodPost, "/api/users/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *Users) Get(ctx context.Context, id string) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, http.MethodGet, "/api/users/"+pathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, http.MethodGet, "/api/users/email/"+pathEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *Users) Update(ctx context.Context, id string, in *domain.User) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, http.MethodPut, "/api/users/"+pathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
