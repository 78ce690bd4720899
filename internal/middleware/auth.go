package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cryptichearts/backend/internal/models"
)

type contextKey string

const DIDKey contextKey = "did"

// IssueToken signs a session token for did.
func IssueToken(jwtSecret, did string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"did": did,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// JWTAuth middleware validates session tokens. Browsers cannot set headers on
// a websocket upgrade, so a "token" query parameter is accepted as well.
func JWTAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.URL.Query().Get("token")
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid authorization header format"))
					return
				}
				tokenString = parts[1]
			}
			if tokenString == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Authorization header required"))
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil || !token.Valid {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid or expired token"))
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid token claims"))
				return
			}

			did, ok := claims["did"].(string)
			if !ok || did == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid DID in token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithDID(r.Context(), did)))
		})
	}
}

func WithDID(ctx context.Context, did string) context.Context {
	return context.WithValue(ctx, DIDKey, did)
}

// GetDID extracts the caller's DID from context
func GetDID(ctx context.Context) string {
	did, ok := ctx.Value(DIDKey).(string)
	if !ok {
		return ""
	}
	return did
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
