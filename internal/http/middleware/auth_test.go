package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func identityRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity(secret))
	r.GET("/whoami", func(c *gin.Context) {
		tid, _ := c.Get(ctxKeyTenantID)
		uid, _ := c.Get(ctxKeyUserID)
		c.JSON(http.StatusOK, gin.H{"tenant": asString(tid), "user": asString(uid)})
	})
	return r
}

func signToken(t *testing.T, secret string, claims IdentityClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func whoami(t *testing.T, r *gin.Engine, mutate func(*http.Request)) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func TestIdentity_DemoMode_Headers(t *testing.T) {
	r := identityRouter("")

	code, body := whoami(t, r, func(req *http.Request) {
		req.Header.Set("X-Tenant-ID", "acme")
		req.Header.Set("X-User-ID", "user-42")
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d; want 200", code)
	}
	if body["tenant"] != "acme" || body["user"] != "user-42" {
		t.Fatalf("identity = %v; want acme/user-42", body)
	}
}

func TestIdentity_DemoMode_NeverRejects(t *testing.T) {
	r := identityRouter("")

	// No headers at all: the request still reaches the handler, with
	// nothing set in the context.
	code, body := whoami(t, r, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d; want 200", code)
	}
	if body["tenant"] != "" || body["user"] != "" {
		t.Fatalf("expected empty identity, got %v", body)
	}
}

func TestIdentity_ValidToken(t *testing.T) {
	r := identityRouter(testSecret)

	tok := signToken(t, testSecret, IdentityClaims{
		TenantID: "acme",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	code, body := whoami(t, r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d; want 200", code)
	}
	if body["tenant"] != "acme" || body["user"] != "user-42" {
		t.Fatalf("identity = %v; want acme/user-42", body)
	}
}

func TestIdentity_Rejections(t *testing.T) {
	r := identityRouter(testSecret)

	expired := signToken(t, testSecret, IdentityClaims{
		TenantID: "acme",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	wrongKey := signToken(t, "other-secret", IdentityClaims{
		TenantID:         "acme",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"},
	})
	noTenant := signToken(t, testSecret, IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"},
	})
	noSubject := signToken(t, testSecret, IdentityClaims{TenantID: "acme"})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
		{"missing tenant claim", "Bearer " + noTenant},
		{"missing sub claim", "Bearer " + noSubject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := whoami(t, r, func(req *http.Request) {
				if tc.header != "" {
					req.Header.Set("Authorization", tc.header)
				}
			})
			if code != http.StatusUnauthorized {
				t.Fatalf("status = %d; want 401", code)
			}
		})
	}
}

func TestIdentity_RejectsNonHMACAlg(t *testing.T) {
	r := identityRouter(testSecret)

	// alg=none tokens must never be accepted.
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, IdentityClaims{
		TenantID:         "acme",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	code, _ := whoami(t, r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", code)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER  abc ", "abc"},
		{"Bearer ", ""},
		{"Basic abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.in); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
