package server

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/auth"
	"github.com/certilux/cert-app/internal/config"
	"github.com/certilux/cert-app/internal/handlers"
	"github.com/certilux/cert-app/internal/httpx"
	"github.com/certilux/cert-app/internal/mailer"
	"github.com/certilux/cert-app/internal/middleware"
	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/monitoring"
	"github.com/certilux/cert-app/internal/otp"
	"github.com/certilux/cert-app/internal/services"
	"github.com/certilux/cert-app/internal/wizard"
)

const wizardTTL = 2 * time.Hour

// Deps carries the external collaborators the router wires into the
// handlers.
type Deps struct {
	Codes  otp.CodeStore
	Mail   mailer.Mailer
	Svc    *services.MissionService
	Config config.Config
}

// New constructs the root http.Handler with all routes and middlewares
// applied.
func New(db *gorm.DB, deps Deps) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth verifies the session's user still exists; RequireRole
	// resolves roles through the same table.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})
	auth.SetRoleResolver(func(_ context.Context, uid uint) (string, bool) {
		var user models.User
		if err := db.Select("role").First(&user, uid).Error; err != nil {
			return "", false
		}
		return string(user.Role), true
	})

	// --- Health and ops endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", monitoring.Handler())

	authed := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}
	partner := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(auth.RequireRole(string(models.RolePartner))(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(auth.RequireRole(string(models.RoleAdmin))(h))
	}

	// Accounts and sessions
	ah := handlers.NewAuthHandler(db, deps.Codes, deps.Mail, deps.Config.PublicBaseURL)
	mux.HandleFunc("POST /signup", ah.Signup)
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /logout", ah.Logout)
	mux.Handle("GET /me", authed(ah.Me))
	mux.HandleFunc("POST /otp/request", ah.RequestOTP)
	mux.HandleFunc("POST /otp/verify", ah.VerifyOTP)
	mux.HandleFunc("POST /password/forgot", ah.ForgotPassword)
	mux.HandleFunc("POST /password/reset", ah.ResetPassword)

	// Intake wizard
	store := wizard.NewStore(wizardTTL)
	wh := handlers.NewIntakeHandler(store, deps.Svc, deps.Config.PaymentURL)
	mux.Handle("GET /tiers", authed(wh.Tiers))
	mux.Handle("POST /intake", partner(wh.Open))
	mux.Handle("GET /intake/{token}", partner(wh.State))
	mux.Handle("POST /intake/{token}/info", partner(wh.Info))
	mux.Handle("POST /intake/{token}/service", partner(wh.Service))
	mux.Handle("POST /intake/{token}/back", partner(wh.Back))
	mux.Handle("POST /intake/{token}/submit", partner(wh.Submit))
	mux.Handle("DELETE /intake/{token}", partner(wh.Cancel))

	// Clients
	ch := handlers.NewClientHandler(db)
	mux.Handle("GET /clients", partner(ch.List))
	mux.Handle("GET /clients/{id}", partner(ch.Get))
	mux.Handle("PUT /clients/{id}", partner(ch.Update))

	// Missions and reports
	mh := handlers.NewMissionHandler(db, deps.Svc)
	rh := handlers.NewReportHandler(deps.Svc)
	mux.Handle("GET /missions", partner(mh.List))
	mux.Handle("GET /missions/{id}", partner(mh.Get))
	mux.Handle("POST /missions/{id}/start", partner(mh.Start))
	mux.Handle("POST /missions/{id}/complete", partner(mh.Complete))
	mux.Handle("POST /missions/{id}/cancel", partner(mh.Cancel))
	mux.Handle("GET /missions/{id}/pdf", partner(mh.ExportPDF))
	mux.Handle("GET /missions/{id}/report", partner(rh.Get))
	mux.Handle("PUT /missions/{id}/report/{section}", partner(rh.SaveSection))

	// Payments
	ph := handlers.NewPaymentHandler(db, deps.Config.PaymentCallbackSecret)
	mux.Handle("GET /missions/{id}/payment", partner(ph.Status))
	mux.HandleFunc("POST /payments/callback", ph.Callback)

	// Uploads
	uh := handlers.NewUploadHandler(db, deps.Config.UploadDir)
	mux.Handle("POST /uploads", partner(uh.Upload))
	mux.Handle("GET /uploads", partner(uh.List))

	// Admin
	adm := handlers.NewAdminHandler(db)
	mux.Handle("GET /admin/users", admin(adm.ListUsers))
	mux.Handle("PUT /admin/users/{id}/role", admin(adm.SetRole))
	mux.Handle("GET /admin/audit", admin(adm.Audit))

	return middleware.Prefs(middleware.Recover(middleware.Metrics(middleware.Logging(auth.Middleware(mux)))))
}
