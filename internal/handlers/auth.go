// Package handlers exposes the HTTP surface: account and session
// endpoints, the intake wizard, missions with their reports, uploads
// and the admin routes. Handlers stay thin; business rules live in
// services.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/auth"
	"github.com/certilux/cert-app/internal/httpx"
	"github.com/certilux/cert-app/internal/i18n"
	"github.com/certilux/cert-app/internal/mailer"
	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/otp"
	"github.com/certilux/cert-app/internal/validation"
)

const (
	otpTTL        = 10 * time.Minute
	resetTokenTTL = time.Hour
)

type AuthHandler struct {
	DB      *gorm.DB
	Codes   otp.CodeStore
	Mail    mailer.Mailer
	BaseURL string
}

func NewAuthHandler(db *gorm.DB, codes otp.CodeStore, mail mailer.Mailer, baseURL string) *AuthHandler {
	return &AuthHandler{DB: db, Codes: codes, Mail: mail, BaseURL: strings.TrimRight(baseURL, "/")}
}

func failValidation(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	lang := i18n.LangFrom(r.Context())
	translated := make(map[string]string, len(v))
	for field, code := range v {
		translated[field] = i18n.T(lang, code)
	}
	httpx.JSONErrorMsg(w, http.StatusUnprocessableEntity, "validation_failed", i18n.T(lang, "validation_failed"), translated)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		ShopName  string `json:"shop_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.Required("password", req.Password, v)
	validation.MinLen("password", req.Password, 8, v)
	if !v.Empty() {
		failValidation(w, r, v)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err == nil && count > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	// New accounts always start as plain users; partner access is
	// granted by an admin.
	user := models.User{
		Email:    email,
		Password: string(hash),
		Prenom:   strings.TrimSpace(req.FirstName),
		Nom:      strings.TrimSpace(req.LastName),
		ShopName: strings.TrimSpace(req.ShopName),
		Role:     models.RoleUser,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could_not_create_user", nil)
		return
	}

	h.sendOTP(r.Context(), user.Email)

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	lang := i18n.LangFrom(r.Context())
	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		httpx.JSONErrorMsg(w, http.StatusUnauthorized, "invalid_credentials", i18n.T(lang, "invalid_credentials"), nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONErrorMsg(w, http.StatusUnauthorized, "invalid_credentials", i18n.T(lang, "invalid_credentials"), nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) sendOTP(ctx context.Context, email string) {
	code, err := otp.GenerateCode()
	if err != nil {
		return
	}
	if err := h.Codes.Put(ctx, "verify:"+email, code, otpTTL); err != nil {
		return
	}
	_ = h.Mail.SendOTP(email, code)
}

// RequestOTP issues a fresh email verification code. The response is
// identical whether or not the account exists.
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err == nil {
		h.sendOTP(r.Context(), user.Email)
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"sent": true})
}

// VerifyOTP consumes a verification code. Codes are single use.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.Codes.Verify(r.Context(), "verify:"+email, req.Code); err != nil {
		lang := i18n.LangFrom(r.Context())
		httpx.JSONErrorMsg(w, http.StatusUnauthorized, "otp_invalid", i18n.T(lang, "otp_invalid"), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"verified": true})
}

// ForgotPassword emails a reset link. Always answers 202 so the
// endpoint does not leak which emails hold an account.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err == nil {
		token, err := otp.GenerateToken()
		if err == nil {
			if err := h.Codes.Put(r.Context(), "reset:"+token, user.Email, resetTokenTTL); err == nil {
				link := h.BaseURL + "/reset-password?token=" + token
				_ = h.Mail.SendPasswordReset(user.Email, link)
			}
		}
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"sent": true})
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("token", req.Token, v)
	validation.Required("password", req.Password, v)
	validation.MinLen("password", req.Password, 8, v)
	if !v.Empty() {
		failValidation(w, r, v)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.Codes.Verify(r.Context(), "reset:"+req.Token, email); err != nil {
		if errors.Is(err, otp.ErrNotFound) {
			lang := i18n.LangFrom(r.Context())
			httpx.JSONErrorMsg(w, http.StatusUnauthorized, "otp_invalid", i18n.T(lang, "otp_invalid"), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).Update("password", string(hash)).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reset": true})
}
