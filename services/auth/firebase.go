package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"vlogvalidator/core"
	"vlogvalidator/core/auth"
)

// Firebase's client-side auth API has no official Go SDK; this is a thin
// REST client for the password sign-in endpoint, the same exchange the
// identity toolkit JS SDK performs.
var signInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

type firebaseBackend struct {
	apiKey string
	client *http.Client
}

var _ auth.Backend = (*firebaseBackend)(nil)

func NewFirebaseBackend(conf *core.Config) *firebaseBackend {
	return &firebaseBackend{
		apiKey: conf.Auth.WebAPIKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *firebaseBackend) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return auth.Session{}, errors.Wrap(err, "marshalling sign-in request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInURL+"?key="+b.apiKey, bytes.NewReader(body))
	if err != nil {
		return auth.Session{}, errors.Wrap(err, "building sign-in request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return auth.Session{}, errors.Wrap(err, "calling identity backend")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		var payload struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&payload)
		return auth.Session{}, categorize(payload.Error.Message, res.StatusCode)
	}

	var payload struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	}
	if err = json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return auth.Session{}, errors.Wrap(err, "decoding sign-in response")
	}
	return auth.Session{UID: payload.LocalID, Email: payload.Email}, nil
}

func categorize(code string, status int) error {
	switch {
	case code == "INVALID_EMAIL":
		return auth.ErrInvalidEmail
	case strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(code, "INVALID_PASSWORD"),
		strings.HasPrefix(code, "EMAIL_NOT_FOUND"):
		return auth.ErrInvalidCredentials
	}
	return errors.Errorf("identity backend: %s (status %d)", code, status)
}
