package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/mailer"
	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/otp"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func postJSON(t *testing.T, fn http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	fn(w, r)
	return w
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	db := setupHandlerTestDB(t)
	h := NewAuthHandler(db, otp.NewMemoryStore(), mailer.LogMailer{}, "https://app.test")

	body := map[string]string{"email": "a@b.fr", "password": "motdepasse"}
	if w := postJSON(t, h.Signup, body); w.Code != http.StatusCreated {
		t.Fatalf("first signup: %d %s", w.Code, w.Body.String())
	}
	if w := postJSON(t, h.Signup, body); w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: %d", w.Code)
	}
}

func TestSignupValidatesPasswordLength(t *testing.T) {
	db := setupHandlerTestDB(t)
	h := NewAuthHandler(db, otp.NewMemoryStore(), mailer.LogMailer{}, "https://app.test")

	w := postJSON(t, h.Signup, map[string]string{"email": "a@b.fr", "password": "court"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short password accepted: %d", w.Code)
	}
}

func TestSignupAssignsUserRole(t *testing.T) {
	db := setupHandlerTestDB(t)
	h := NewAuthHandler(db, otp.NewMemoryStore(), mailer.LogMailer{}, "https://app.test")

	if w := postJSON(t, h.Signup, map[string]string{"email": "shop@b.fr", "password": "motdepasse", "shop_name": "Atelier"}); w.Code != http.StatusCreated {
		t.Fatalf("signup: %d", w.Code)
	}
	var user models.User
	if err := db.Where("email = ?", "shop@b.fr").First(&user).Error; err != nil {
		t.Fatal(err)
	}
	// Self-service signup never grants partner access.
	if user.Role != models.RoleUser {
		t.Errorf("role = %s", user.Role)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupHandlerTestDB(t)
	h := NewAuthHandler(db, otp.NewMemoryStore(), mailer.LogMailer{}, "https://app.test")

	postJSON(t, h.Signup, map[string]string{"email": "a@b.fr", "password": "motdepasse"})
	w := postJSON(t, h.Login, map[string]string{"email": "a@b.fr", "password": "mauvais"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", w.Code)
	}
	w = postJSON(t, h.Login, map[string]string{"email": "a@b.fr", "password": "motdepasse"})
	if w.Code != http.StatusOK {
		t.Fatalf("correct password: %d", w.Code)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Error("login must set the session cookie")
	}
}

func TestOTPVerifyConsumesCode(t *testing.T) {
	db := setupHandlerTestDB(t)
	codes := otp.NewMemoryStore()
	h := NewAuthHandler(db, codes, mailer.LogMailer{}, "https://app.test")

	postJSON(t, h.Signup, map[string]string{"email": "a@b.fr", "password": "motdepasse"})
	// Stash a known code the way RequestOTP would.
	if err := codes.Put(context.Background(), "verify:a@b.fr", "123456", time.Minute); err != nil {
		t.Fatal(err)
	}

	if w := postJSON(t, h.VerifyOTP, map[string]string{"email": "a@b.fr", "code": "999999"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong code: %d", w.Code)
	}
	if w := postJSON(t, h.VerifyOTP, map[string]string{"email": "a@b.fr", "code": "123456"}); w.Code != http.StatusOK {
		t.Fatalf("right code: %d", w.Code)
	}
	// Single use.
	if w := postJSON(t, h.VerifyOTP, map[string]string{"email": "a@b.fr", "code": "123456"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("replayed code: %d", w.Code)
	}
}

func TestResetPasswordWithToken(t *testing.T) {
	db := setupHandlerTestDB(t)
	codes := otp.NewMemoryStore()
	h := NewAuthHandler(db, codes, mailer.LogMailer{}, "https://app.test")

	postJSON(t, h.Signup, map[string]string{"email": "a@b.fr", "password": "motdepasse"})
	if err := codes.Put(context.Background(), "reset:tok123", "a@b.fr", time.Hour); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, h.ResetPassword, map[string]string{"token": "tok123", "email": "a@b.fr", "password": "nouveaumdp"})
	if w.Code != http.StatusOK {
		t.Fatalf("reset: %d %s", w.Code, w.Body.String())
	}
	if w := postJSON(t, h.Login, map[string]string{"email": "a@b.fr", "password": "nouveaumdp"}); w.Code != http.StatusOK {
		t.Fatalf("login with new password: %d", w.Code)
	}
	if w := postJSON(t, h.Login, map[string]string{"email": "a@b.fr", "password": "motdepasse"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("old password still accepted: %d", w.Code)
	}
}
