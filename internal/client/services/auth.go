// Package services contains application services of the admin client.
// This file defines the authentication service: register, login and
// logout on top of the gateway and the session store.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/useradmin/internal/client/gateway"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/logging"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthAPI is the part of the gateway the auth service needs.
type AuthAPI interface {
	Register(ctx context.Context, r models.Registration) (string, error)
	Login(ctx context.Context, c models.Credentials) (*gateway.LoginResult, error)
}

// Session is the part of the session store services write to.
type Session interface {
	Login(ctx context.Context, user *models.User, token string) error
	Logout(ctx context.Context)
	Update(ctx context.Context, user *models.User) error
	User() *models.User
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create an account; the operator still has to log in.
//   - Login: authenticate and store user and token in the session.
//   - Logout: forget the local session. There is no server call.
type AuthService interface {
	Register(ctx context.Context, r models.Registration) (string, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context)
}

type authService struct {
	api     AuthAPI
	session Session
	log     logging.Logger
}

func NewAuthService(api AuthAPI, session Session, log logging.Logger) AuthService {
	return &authService{api: api, session: session, log: log.With("component", "auth")}
}

// Register validates the form locally before calling the server.
func (a *authService) Register(ctx context.Context, r models.Registration) (string, error) {
	r.Email = strings.TrimSpace(r.Email)
	if err := r.Validate(); err != nil {
		return "", err
	}

	msg, err := a.api.Register(ctx, r)
	if err != nil {
		return "", err
	}
	a.log.Info(ctx, "account registered", "email", r.Email)
	if msg == "" {
		msg = "Registration successful"
	}
	return msg, nil
}

// Login succeeds only when the server answers with both a user and a
// token. Anything less is ErrInvalidCredentials carrying the server text.
func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	creds := models.Credentials{Email: strings.TrimSpace(email), Password: password}
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: email and password", models.ErrRequired)
	}

	res, err := a.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if res.User == nil || res.Token == "" {
		msg := res.Message
		if msg == "" {
			msg = "login response carried no session"
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
	}

	if err := a.session.Login(ctx, res.User, res.Token); err != nil {
		return nil, err
	}
	return res.User.Clone(), nil
}

func (a *authService) Logout(ctx context.Context) {
	a.session.Logout(ctx)
	a.log.Info(ctx, "logged out")
}
