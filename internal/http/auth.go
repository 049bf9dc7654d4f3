package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fjod/go_shop/internal/apperr"
	"github.com/fjod/go_shop/internal/service"
	"github.com/golang-jwt/jwt/v5"
)

const roleAdmin = "admin"

// Claims is the bearer token payload. Tokens are issued by the identity
// service; this process only verifies them.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type actorKey struct{}

type Authenticator struct {
	secret []byte
	responder
}

func NewAuthenticator(secret string, cfg HandlerConfig) *Authenticator {
	return &Authenticator{secret: []byte(secret), responder: responder{cfg: cfg}}
}

func (a *Authenticator) parse(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errors.New("missing bearer token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user_id")
	}
	return claims, nil
}

// Middleware rejects requests without a valid token and stores the caller
// in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.parse(r)
		if err != nil {
			a.respondError(w, r, apperr.New(apperr.KindUnauthorized, "you are not logged in, please log in to get access", err))
			return
		}

		actor := service.Actor{UserID: claims.UserID, Email: claims.Email, Admin: claims.Role == roleAdmin}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

// RequireAdmin must run after Middleware.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok || !actor.Admin {
			a.respondError(w, r, apperr.Forbidden("you do not have permission to perform this action"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the token's user id without enforcing anything; used for
// request logging.
func (a *Authenticator) UserID(r *http.Request) string {
	claims, err := a.parse(r)
	if err != nil {
		return ""
	}
	return claims.UserID
}

func ActorFrom(ctx context.Context) (service.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(service.Actor)
	return actor, ok
}

func WithActor(ctx context.Context, actor service.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// actor writes a 401 and returns false when the request carries no caller.
func (rs responder) actor(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		rs.respondError(w, r, apperr.Unauthorized("you are not logged in, please log in to get access"))
	}
	return actor, ok
}
