package service

import (
	"errors"

	"github.com/ikkim/shopgenie-backend/internal/app/model"
)

var ErrNotSignedIn = errors.New("no user is signed in")

// SessionStore holds the current identity, if any.
type SessionStore interface {
	Current() (model.UserIdentity, bool)
	SignIn(identity model.UserIdentity)
	SignOut() bool
	UpdateProfile(update model.ProfileUpdate) (model.UserIdentity, error)
	Restore(identity *model.UserIdentity)
}

type sessionStore struct {
	user *model.UserIdentity
}

func NewSessionStore() SessionStore {
	return &sessionStore{}
}

func (s *sessionStore) Current() (model.UserIdentity, bool) {
	if s.user == nil {
		return model.UserIdentity{}, false
	}
	return *s.user, true
}

func (s *sessionStore) SignIn(identity model.UserIdentity) {
	s.user = &identity
}

func (s *sessionStore) SignOut() bool {
	if s.user == nil {
		return false
	}
	s.user = nil
	return true
}

func (s *sessionStore) UpdateProfile(update model.ProfileUpdate) (model.UserIdentity, error) {
	if s.user == nil {
		return model.UserIdentity{}, ErrNotSignedIn
	}
	updated := update.Apply(*s.user)
	s.user = &updated
	return updated, nil
}

func (s *sessionStore) Restore(identity *model.UserIdentity) {
	if identity == nil || identity.ID == "" {
		s.user = nil
		return
	}
	restored := *identity
	s.user = &restored
}
