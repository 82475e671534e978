// Package auth implements the single-operator admin guard. There are no
// users or sessions; one shared password covers the few destructive
// endpoints.
package auth

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
)

// Guard checks the admin password on guarded routes. The plaintext from
// config is hashed once at construction so request handling only ever
// compares against the hash.
type Guard struct {
	logger *slog.Logger
	hash   []byte
}

// NewGuard builds Guard from the configured plaintext password.
func NewGuard(logger *slog.Logger, password string) (*Guard, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Guard{logger: logger, hash: hash}, nil
}

// Middleware rejects requests whose X-Admin-Password header (or senha
// query param, for browser downloads) does not match.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		password := r.Header.Get("X-Admin-Password")
		if password == "" {
			password = r.URL.Query().Get("senha")
		}
		if bcrypt.CompareHashAndPassword(g.hash, []byte(password)) != nil {
			g.logger.Warn("acesso admin negado",
				slog.String("path", r.URL.Path), slog.String("ip", r.RemoteAddr))
			httpx.Fail(w, http.StatusUnauthorized, "Senha de administrador incorreta")
			return
		}
		next.ServeHTTP(w, r)
	})
}
