package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Parallel()

	j := NewJWT("test-secret")
	token, err := j.Sign(42)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	userID, err := j.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewJWT("secret-a").Sign(1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewJWT("secret-b").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestJWTRejectsForeignIssuer(t *testing.T) {
	t.Parallel()

	j := NewJWT("test-secret")
	claims := jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := j.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign issuer err = %v, want ErrInvalidToken", err)
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	t.Parallel()

	j := NewJWT("test-secret")
	for _, token := range []string{"", "not.a.token", "a.b"} {
		if _, err := j.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("garbage token %q: err = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	j := NewJWT("test-secret")
	token, err := j.Sign(7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var gotID uint64
	handler := RequireAuth(j)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("user id missing from context")
		}
		gotID = id
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid bearer", authHeader: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "lowercase scheme", authHeader: "bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "bad token", authHeader: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotID != 7 {
				t.Errorf("user id = %d, want 7", gotID)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}
