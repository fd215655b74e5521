package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/useradmin/internal/client/gateway"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/logging"
)

// ProfileAPI is the part of the gateway that works on the logged in user.
type ProfileAPI interface {
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*gateway.ProfileResult, error)
	DeleteAccount(ctx context.Context) (string, error)
	ChangePassword(ctx context.Context, p models.PasswordChange) (string, error)
}

// ProfileService manages the account of the logged in operator and keeps
// the session copy of the user in step with the server.
type ProfileService interface {
	Refresh(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, string, error)
	ChangePassword(ctx context.Context, p models.PasswordChange) (string, error)
	DeleteAccount(ctx context.Context) (string, error)
}

type profileService struct {
	api     ProfileAPI
	session Session
	log     logging.Logger
}

func NewProfileService(api ProfileAPI, session Session, log logging.Logger) ProfileService {
	return &profileService{api: api, session: session, log: log.With("component", "profile")}
}

var errNoProfile = errors.New("profile response carried no user")

func (p *profileService) Refresh(ctx context.Context) (*models.User, error) {
	u, err := p.api.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNoProfile
	}
	if err := p.session.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile stores the user the server confirmed, which may differ from
// what was sent (a new avatar path, say). When the answer has no user the
// profile is fetched again.
func (p *profileService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, string, error) {
	res, err := p.api.UpdateProfile(ctx, upd)
	if err != nil {
		return nil, "", err
	}

	u := res.User
	if u == nil {
		p.log.Debug(ctx, "update answer had no user, refreshing profile")
		if u, err = p.Refresh(ctx); err != nil {
			return nil, "", err
		}
	} else if err := p.session.Update(ctx, u); err != nil {
		return nil, "", err
	}
	return u, res.Message, nil
}

// ChangePassword rejects an incomplete or mismatched form without calling
// the server.
func (p *profileService) ChangePassword(ctx context.Context, pc models.PasswordChange) (string, error) {
	if err := pc.Validate(); err != nil {
		return "", err
	}
	msg, err := p.api.ChangePassword(ctx, pc)
	if err != nil {
		return "", err
	}
	if msg == "" {
		msg = "Password changed"
	}
	return msg, nil
}

// DeleteAccount removes the account and then the local session.
func (p *profileService) DeleteAccount(ctx context.Context) (string, error) {
	msg, err := p.api.DeleteAccount(ctx)
	if err != nil {
		return "", err
	}
	p.session.Logout(ctx)
	p.log.Info(ctx, "account deleted")
	if msg == "" {
		msg = "Account deleted"
	}
	return msg, nil
}
