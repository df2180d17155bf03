package authsvc

import (
	"context"

	"vlogvalidator/core"
	"vlogvalidator/core/auth"
)

// dummyBackend accepts a single fixed credential pair; DEV and tests only.
type dummyBackend struct {
	email    string
	password string
}

var _ auth.Backend = (*dummyBackend)(nil)

func NewDummyBackend(conf *core.Config) *dummyBackend {
	return &dummyBackend{
		email:    conf.Auth.DummyEmail,
		password: conf.Auth.DummyPassword,
	}
}

func (b *dummyBackend) SignIn(_ context.Context, email, password string) (auth.Session, error) {
	if email != b.email || password != b.password {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	return auth.Session{UID: "dummy-" + email, Email: email}, nil
}
