package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillflow/skillflow/api"
	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository/mock"
)

func TestLogin(t *testing.T) {
	const secret = "testsecret"
	tokenDur := 1 * time.Hour

	tests := []struct {
		name       string
		body       any
		prepare    func(store *mock.Store)
		wantStatus int
		checkBody  func(t *testing.T, b []byte)
	}{
		{
			name:       "InvalidJSON",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingEmail",
			body:       map[string]string{"password": "s3cret"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingPassword",
			body:       map[string]string{"email": "alice@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownUser",
			body:       map[string]string{"email": "missing@example.com", "password": "nop"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "WrongPassword",
			body: map[string]string{"email": "bob@example.com", "password": "wrongpw"},
			prepare: func(store *mock.Store) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("rightpw"), bcrypt.DefaultCost)
				store.Users = append(store.Users, models.User{ID: 1, Email: "bob@example.com", PasswordHash: string(hash)})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Success",
			body: map[string]string{"email": "bob@example.com", "password": "hunter2"},
			prepare: func(store *mock.Store) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
				store.Users = append(store.Users, models.User{ID: 1, Email: "bob@example.com", PasswordHash: string(hash)})
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal token: %v", err)
				}
				if ar.Token == "" {
					t.Fatal("empty token")
				}
				token, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil || !token.Valid {
					t.Fatalf("invalid token: %v", err)
				}
				claims := token.Claims.(jwt.MapClaims)
				if claims["email"] != "bob@example.com" {
					t.Fatalf("email claim = %v", claims["email"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewStore()
			if tt.prepare != nil {
				tt.prepare(store)
			}
			handler := api.NewAuthHandler(store, secret, tokenDur)

			var buf bytes.Buffer
			switch b := tt.body.(type) {
			case string:
				buf.WriteString(b)
			default:
				if err := json.NewEncoder(&buf).Encode(b); err != nil {
					t.Fatalf("encode body: %v", err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", &buf)
			rr := httptest.NewRecorder()
			handler.Login(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.checkBody != nil {
				tt.checkBody(t, rr.Body.Bytes())
			}
		})
	}
}

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()

	if err := api.EnsureAdminUser(ctx, store, "admin@example.com", "changeme"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if len(store.Users) != 1 {
		t.Fatalf("users = %d, want 1", len(store.Users))
	}
	if bcrypt.CompareHashAndPassword([]byte(store.Users[0].PasswordHash), []byte("changeme")) != nil {
		t.Fatal("stored hash does not match password")
	}

	// Idempotent on restart.
	if err := api.EnsureAdminUser(ctx, store, "admin@example.com", "changeme"); err != nil {
		t.Fatalf("ensure admin again: %v", err)
	}
	if len(store.Users) != 1 {
		t.Fatalf("users after second ensure = %d, want 1", len(store.Users))
	}
}

func TestEnsureAdminUserDisabledWithoutPassword(t *testing.T) {
	store := mock.NewStore()
	if err := api.EnsureAdminUser(context.Background(), store, "admin@example.com", ""); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if len(store.Users) != 0 {
		t.Fatal("admin must not be created without a password")
	}
}
