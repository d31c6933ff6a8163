package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/auth"
	"github.com/certilux/cert-app/internal/httpx"
	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/policy"
)

const maxUploadSize = 10 << 20 // 10 MiB

// UploadHandler stores item photos and purchase documents on disk and
// records them against their owning entity.
type UploadHandler struct {
	DB  *gorm.DB
	Dir string
}

func NewUploadHandler(db *gorm.DB, dir string) *UploadHandler {
	return &UploadHandler{DB: db, Dir: dir}
}

// Upload: POST /uploads (multipart: file, owner_type, owner_id).
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpx.JSONError(w, http.StatusRequestEntityTooLarge, "file_too_large", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_file", nil)
		return
	}
	defer file.Close()

	ownerType := r.FormValue("owner_type")
	if ownerType != "Mission" && ownerType != "Client" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_owner_type", nil)
		return
	}
	ownerID, err := strconv.ParseUint(r.FormValue("owner_id"), 10, 64)
	if err != nil || ownerID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_owner_id", nil)
		return
	}
	// The owner must belong to the uploading partner. A foreign owner
	// looks identical to a missing one.
	var owner policy.Ownable
	switch ownerType {
	case "Mission":
		var m models.Mission
		if err := h.DB.First(&m, ownerID).Error; err == nil {
			owner = &m
		}
	case "Client":
		var c models.Client
		if err := h.DB.First(&c, ownerID).Error; err == nil {
			owner = &c
		}
	}
	if !policy.Owns(owner, uid) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	// Stored name is opaque; the original name only survives in the
	// database row.
	ext := strings.ToLower(filepath.Ext(header.Filename))
	stored := uuid.NewString() + ext
	dstPath := filepath.Join(h.Dir, stored)
	dst, err := os.Create(dstPath)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	defer dst.Close()
	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(dstPath)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	doc := models.Document{
		OwnerType:  ownerType,
		OwnerID:    uint(ownerID),
		Name:       filepath.Base(header.Filename),
		Path:       dstPath,
		MimeType:   header.Header.Get("Content-Type"),
		Size:       size,
		UploadedBy: uid,
	}
	if err := h.DB.Create(&doc).Error; err != nil {
		os.Remove(dstPath)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

// List: GET /uploads?owner_type=Mission&owner_id=N
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	ownerType := r.URL.Query().Get("owner_type")
	ownerID, err := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 64)
	if err != nil || (ownerType != "Mission" && ownerType != "Client") {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_owner", nil)
		return
	}
	var docs []models.Document
	if err := h.DB.Where("owner_type = ? AND owner_id = ? AND uploaded_by = ?", ownerType, ownerID, uid).
		Order("id desc").Find(&docs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": docs})
}
