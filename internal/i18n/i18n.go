// Package i18n translates machine codes into short user-facing
// messages. French is the house language and the fallback.
package i18n

import (
	"context"
	"strings"
)

type ctxKey struct{}

var translations = map[string]map[string]string{
	"fr": {
		"required":             "Requis",
		"invalid_email":        "Adresse e-mail invalide",
		"invalid_choice":       "Choix invalide",
		"too_short":            "Trop court",
		"validation_failed":    "Certains champs sont invalides",
		"invalid_credentials":  "Identifiants invalides",
		"not_found":            "Introuvable",
		"unauthorized":         "Authentification requise",
		"forbidden":            "Accès refusé",
		"invalid_transition":   "Transition de statut impossible",
		"submission_in_flight": "Une soumission est déjà en cours",
		"report_load_failed":   "Le rapport n'a pas pu être chargé",
		"no_report":            "Aucun rapport de certification disponible",
		"otp_invalid":          "Code invalide ou expiré",
	},
	"en": {
		"required":             "Required",
		"invalid_email":        "Invalid email address",
		"invalid_choice":       "Invalid choice",
		"too_short":            "Too short",
		"validation_failed":    "Some fields are invalid",
		"invalid_credentials":  "Invalid credentials",
		"not_found":            "Not found",
		"unauthorized":         "Authentication required",
		"forbidden":            "Access denied",
		"invalid_transition":   "Status transition not allowed",
		"submission_in_flight": "A submission is already in flight",
		"report_load_failed":   "The report could not be loaded",
		"no_report":            "No certification report available",
		"otp_invalid":          "Invalid or expired code",
	},
}

// T translates a code for a language. Unknown languages fall back to
// French; unknown codes fall back to the code itself.
func T(lang, code string) string {
	m, ok := translations[lang]
	if !ok {
		m = translations["fr"]
	}
	if s, ok := m[code]; ok {
		return s
	}
	if s, ok := translations["fr"][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language
// header value, defaulting to French.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(tag, "-;"); i >= 0 {
			tag = tag[:i]
		}
		switch tag {
		case "en":
			return "en"
		case "fr":
			return "fr"
		}
	}
	return "fr"
}

// WithLang stores the language preference in context.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language preference from context, default fr.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return "fr"
}
