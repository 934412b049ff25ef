package echoapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const contextClaimsKey = "claims"

// Claims represents the authorization claims transmitted via the session JWT.
// Identity is reconstructed entirely from these claims; no DB lookup per
// request, so role changes only take effect once the token expires.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (c Claims) IsAdmin() bool { return c.Role == user.RoleAdmin }

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
		Role:  usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(ss string, conf *core.Config) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(ss, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return conf.SecretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errUnauthorized
	}
	return claims, nil
}

func setSessionCookie(ctx echo.Context, token string, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     conf.Server.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(conf.Server.JWTExpirationDelta),
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     conf.Server.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func authenticate(ctx context.Context, email, pwd string, svc *user.Service) (user.User, error) {
	usr, err := svc.GetByEmail(ctx, core.CleanString(email, true))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errAuthenticationFailed
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return user.User{}, errAuthenticationFailed
	}
	if !usr.IsActive {
		return user.User{}, errAccountDeactivated
	}
	if err = svc.SetLastLogin(ctx, usr.ID, time.Now().UTC()); err != nil {
		return user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(Claims); ok {
		return claims, nil
	}
	return Claims{}, errUnauthorized
}

// public path prefixes; webhooks and cron authenticate downstream
// (payload signature, bearer secret), never by cookie.
var publicPrefixes = []string{
	"/login",
	"/register",
	"/api/auth",
	"/api/webhooks",
	"/api/cron",
	"/api/support/faq",
	"/api/support/videos",
	"/metrics",
	"/static",
	"/favicon.ico",
}

var adminPrefixes = []string{
	"/admin",
	"/api/admin",
	"/api/sync",
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) && (len(path) == len(p) || path[len(p)] == '/') {
			return true
		}
	}
	return false
}

func isPublicPath(path string) bool {
	if path == "" || path == "/" {
		return true
	}
	return matchesPrefix(path, publicPrefixes)
}

func isAdminPath(path string) bool {
	return matchesPrefix(path, adminPrefixes)
}

// wantsHTML reports whether the request is a document navigation rather
// than an API call.
func wantsHTML(req *http.Request) bool {
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

// sessionGate authenticates every non-public request from the session
// cookie. Document navigations are redirected to /login (clearing any
// stale cookie); API requests get a 401. Admin paths additionally require
// the admin role: non-admin navigations are silently sent to /dashboard.
func sessionGate(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			path := req.URL.Path
			if isPublicPath(path) {
				return next(ctx)
			}

			cookie, err := req.Cookie(conf.Server.SessionCookieName)
			if err != nil || cookie.Value == "" {
				if wantsHTML(req) {
					return ctx.Redirect(http.StatusFound, "/login")
				}
				return errUnauthorized
			}
			claims, err := parseToken(cookie.Value, conf)
			if err != nil {
				if wantsHTML(req) {
					clearSessionCookie(ctx, conf)
					return ctx.Redirect(http.StatusFound, "/login")
				}
				return errUnauthorized
			}
			ctx.Set(contextClaimsKey, *claims)

			if isAdminPath(path) && !claims.IsAdmin() {
				if wantsHTML(req) {
					// admin routes are not discoverable by students
					return ctx.Redirect(http.StatusFound, "/dashboard")
				}
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
