package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/deeecaaa/cardmarket/pkg/eth"
)

type contextKey string

const WalletKey contextKey = "wallet"

// Auth requires a valid session token and puts the caller's wallet address
// on the request context.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wallet, ok := walletFromHeader(r, jwtSecret)
			if !ok {
				http.Error(w, `{"error":{"code":"UNAUTHORIZED","message":"Missing or invalid token"}}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), WalletKey, wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the caller's wallet when a token is present but
// lets anonymous requests through. The catalog uses it: logged-out viewers
// see every listed card.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if wallet, ok := walletFromHeader(r, jwtSecret); ok {
				r = r.WithContext(context.WithValue(r.Context(), WalletKey, wallet))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetWallet extracts the caller wallet from the request context. Returns ""
// for anonymous requests.
func GetWallet(ctx context.Context) string {
	wallet, _ := ctx.Value(WalletKey).(string)
	return wallet
}

func walletFromHeader(r *http.Request, secret string) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}

	return ParseWalletToken(strings.TrimPrefix(header, "Bearer "), secret)
}

// ParseWalletToken validates a session token and returns its wallet subject.
func ParseWalletToken(tokenStr, secret string) (string, bool) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sub, _ := claims.GetSubject()
	if !eth.IsAddress(sub) {
		return "", false
	}
	return eth.Normalize(sub), true
}
