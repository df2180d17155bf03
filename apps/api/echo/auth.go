package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"vlogvalidator/core"
	"vlogvalidator/core/auth"
)

var (
	contextTokenKey = "teacherToken"
	errSigningToken = errors.New("signing token")
	signingMethod   = jwt.SigningMethodHS256
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

func GetSessionClaims(sess auth.Session, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   sess.UID,
			Audience:  "Teacher Dashboard",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: sess.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the session Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(signingMethod, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errSigningToken
	}
	return ss, nil
}

// jwtMiddleware gates a route group on a valid Bearer token.
func jwtMiddleware(conf *core.Config) echo.MiddlewareFunc {
	key := []byte(conf.SecretKey)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			raw := strings.TrimPrefix(header, "Bearer ")
			if header == "" || raw == header {
				return errTokenMissing
			}

			token, err := jwt.ParseWithClaims(raw, new(Claims), func(t *jwt.Token) (interface{}, error) {
				if t.Method.Alg() != signingMethod.Alg() {
					return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				return errUnauthorized
			}

			ctx.Set(contextTokenKey, token)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

type authApi struct {
	svc      *auth.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *auth.Service, conf *core.Config, validate *validator.Validate) {
	api := authApi{
		svc:      svc,
		conf:     conf,
		validate: validate,
	}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout, jwt)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Login(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}

	token, err := GenerateToken(GetSessionClaims(sess, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) logout(ctx echo.Context) error {
	api.svc.Logout()
	return ctx.NoContent(http.StatusNoContent)
}
