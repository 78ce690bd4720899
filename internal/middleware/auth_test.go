package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

const secret = "test-secret"

func protected() http.Handler {
	return JWTAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetDID(r.Context())))
	}))
}

func TestJWTAuth(t *testing.T) {
	good, err := IssueToken(secret, "did:example:amy", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, _ := IssueToken(secret, "did:example:amy", -time.Hour)
	forged, _ := IssueToken("other-secret", "did:example:amy", time.Hour)

	tests := []struct {
		name   string
		header string
		query  string
		code   int
		body   string
	}{
		{name: "bearer", header: "Bearer " + good, code: http.StatusOK, body: "did:example:amy"},
		{name: "query token", query: "?token=" + good, code: http.StatusOK, body: "did:example:amy"},
		{name: "missing", code: http.StatusUnauthorized},
		{name: "bad scheme", header: "Basic " + good, code: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, code: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + forged, code: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/following"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected().ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestGetDID_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", GetDID(req.Context()))
}
