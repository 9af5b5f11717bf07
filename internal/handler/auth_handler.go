package handler

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"

	"github.com/fizl-health/fizl-backend/internal/domain"
	"github.com/fizl-health/fizl-backend/internal/middleware"
	"github.com/fizl-health/fizl-backend/internal/repository"
	"github.com/fizl-health/fizl-backend/internal/service"
)

type AuthHandler struct {
	jwtSecret      string
	userRepo       *repository.UserRepository
	resetTokenRepo *repository.ResetTokenRepository
	emailService   *service.EmailService
}

func NewAuthHandler(
	jwtSecret string,
	userRepo *repository.UserRepository,
	resetTokenRepo *repository.ResetTokenRepository,
	emailService *service.EmailService,
) *AuthHandler {
	return &AuthHandler{
		jwtSecret:      jwtSecret,
		userRepo:       userRepo,
		resetTokenRepo: resetTokenRepo,
		emailService:   emailService,
	}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if !validEmail(email) {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         domain.RoleUser,
	}
	if err := h.userRepo.Create(user); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	go h.sendVerification(user.ID, email)

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, domain.TokenResponse{Token: token, User: user})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.userRepo.GetByEmail(email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.userRepo.TouchLastActive(user.ID, time.Now().UTC()); err != nil {
		log.Printf("[sign-in] failed to touch last active for %s: %v", user.ID, err)
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenResponse{Token: token, User: user})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "current and new password are required")
		return
	}
	if len(req.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	user, err := h.userRepo.GetByID(userID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "failed to change password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := h.userRepo.UpdatePassword(userID, string(passwordHash)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to change password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "if the email exists, a code has been sent"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))

	go func() {
		user, err := h.userRepo.GetByEmail(email)
		if err != nil {
			log.Printf("[forgot-password] db error looking up %s: %v", email, err)
			return
		}
		if user == nil {
			return
		}

		if err := h.resetTokenRepo.DeleteByUserID(user.ID); err != nil {
			log.Printf("[forgot-password] failed to delete old tokens for user %s: %v", user.ID, err)
		}

		otp, err := generateOTP()
		if err != nil {
			log.Printf("[forgot-password] failed to generate OTP: %v", err)
			return
		}

		expiresAt := time.Now().Add(15 * time.Minute)
		if err := h.resetTokenRepo.Create(user.ID, otp, expiresAt); err != nil {
			log.Printf("[forgot-password] failed to save reset token for user %s: %v", user.ID, err)
			return
		}

		if err := h.emailService.SendPasswordReset(email, otp); err != nil {
			log.Printf("[forgot-password] failed to send to %s: %v", email, err)
			return
		}
		log.Printf("[forgot-password] reset email sent to %s", email)
	}()

	writeJSON(w, http.StatusOK, map[string]string{"message": "if the email exists, a code has been sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Token == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, token and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	resetToken, err := h.resetTokenRepo.GetValidByEmailAndToken(email, req.Token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to verify token")
		return
	}
	if resetToken == nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := h.userRepo.UpdatePassword(resetToken.UserID, string(passwordHash)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	if err := h.resetTokenRepo.MarkUsed(resetToken.ID); err != nil {
		log.Printf("[reset-password] failed to mark token used: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	verified, err := h.userRepo.VerifyEmail(req.Token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to verify email")
		return
	}
	if !verified {
		writeError(w, http.StatusUnauthorized, "invalid verification token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	user, err := h.userRepo.GetByID(userID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "failed to resend verification")
		return
	}
	if user.EmailVerified {
		writeError(w, http.StatusConflict, "email already verified")
		return
	}

	go h.sendVerification(user.ID, user.Email)

	writeJSON(w, http.StatusOK, map[string]string{"message": "verification email sent"})
}

func (h *AuthHandler) sendVerification(userID, email string) {
	otp, err := generateOTP()
	if err != nil {
		log.Printf("[verify-email] failed to generate OTP: %v", err)
		return
	}
	if err := h.userRepo.SetVerificationToken(userID, otp); err != nil {
		log.Printf("[verify-email] failed to save token for user %s: %v", userID, err)
		return
	}
	if err := h.emailService.SendVerification(email, otp); err != nil {
		log.Printf("[verify-email] failed to send to %s: %v", email, err)
	}
}

func generateOTP() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := int(b[0])<<16 | int(b[1])<<8 | int(b[2])
	return fmt.Sprintf("%06d", n%1000000), nil
}
