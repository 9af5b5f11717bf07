package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fizl-health/fizl-backend/internal/domain"
	"github.com/fizl-health/fizl-backend/internal/middleware"
	"github.com/fizl-health/fizl-backend/internal/repository"
	"github.com/fizl-health/fizl-backend/internal/service"
)

type AdminHandler struct {
	userRepo *repository.UserRepository
	fileRepo *repository.FileRepository
	storage  service.ObjectStorage
}

func NewAdminHandler(userRepo *repository.UserRepository, fileRepo *repository.FileRepository, storage service.ObjectStorage) *AdminHandler {
	return &AdminHandler{userRepo: userRepo, fileRepo: fileRepo, storage: storage}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePaging(r)

	var (
		users []domain.User
		total int
		err   error
	)
	if query := r.URL.Query().Get("q"); query != "" {
		users, total, err = h.userRepo.Search(query, page, limit)
	} else {
		users, total, err = h.userRepo.List(page, limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: users, Page: page, Limit: limit, Total: total})
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.userRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes the account and all owned data. Stored files are
// deleted from object storage best-effort; an unreachable bucket must not
// block the account deletion.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.userRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if id == middleware.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "cannot delete your own account")
		return
	}
	if user.Role == domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot delete an admin account")
		return
	}

	files, err := h.fileRepo.ListByUser(id)
	if err != nil {
		log.Printf("[admin] failed to list files for user %s: %v", id, err)
	}

	if err := h.userRepo.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	for _, f := range files {
		if err := h.storage.Delete(r.Context(), f.FilePath); err != nil {
			log.Printf("[admin] failed to delete object %s: %v", f.FilePath, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// UploadUserFile stores a file (typically a metabolic test report) against
// a user. Multipart form with a "file" part and an optional "description".
func (h *AdminHandler) UploadUserFile(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]
	adminID := middleware.UserID(r.Context())

	user, err := h.userRepo.GetByID(targetID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := service.ObjectKey(targetID, header.Filename)
	if err := h.storage.Upload(r.Context(), key, contentType, file); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to upload file")
		return
	}

	record := &domain.UserFile{
		UserID:     targetID,
		FileName:   header.Filename,
		FilePath:   key,
		FileSize:   header.Size,
		MimeType:   contentType,
		UploadedBy: adminID,
	}
	if desc := r.FormValue("description"); desc != "" {
		record.Description = &desc
	}
	if err := h.fileRepo.Create(record); err != nil {
		if delErr := h.storage.Delete(r.Context(), key); delErr != nil {
			log.Printf("[admin] failed to clean up object %s: %v", key, delErr)
		}
		writeError(w, http.StatusInternalServerError, "failed to save file record")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (h *AdminHandler) ListUserFiles(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]

	files, err := h.fileRepo.ListByUser(targetID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list files")
		return
	}
	if files == nil {
		files = []domain.UserFile{}
	}

	writeJSON(w, http.StatusOK, files)
}

// FileURL returns a short-lived signed download URL; file contents never
// stream through the API server.
func (h *AdminHandler) FileURL(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	record, err := h.fileRepo.GetByID(fileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get file")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	url, err := h.storage.SignedURL(r.Context(), record.FilePath, 15*time.Minute)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign url")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *AdminHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	record, err := h.fileRepo.GetByID(fileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get file")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	if _, err := h.fileRepo.Delete(fileID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}

	if err := h.storage.Delete(r.Context(), record.FilePath); err != nil {
		log.Printf("[admin] failed to delete object %s: %v", record.FilePath, err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}
