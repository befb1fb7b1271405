package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dwiyanpr/product-catalog-api/internal/application"
	"github.com/dwiyanpr/product-catalog-api/internal/domain/entity"
	"github.com/dwiyanpr/product-catalog-api/internal/domain/repository"
	"github.com/dwiyanpr/product-catalog-api/internal/interface/middleware"
	"github.com/dwiyanpr/product-catalog-api/pkg/response"
	"github.com/dwiyanpr/product-catalog-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name                 string `json:"name" form:"name" binding:"required,max=255"`
	Email                string `json:"email" form:"email" binding:"required,email,max=255"`
	Password             string `json:"password" form:"password" binding:"required,pwd"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

func userPayload(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Register POST /api/register. Creates the user; no token is issued.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Validation Error", validation.ToDetails(err))
		return
	}

	if _, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.Fail(c, http.StatusConflict, "Email already registered", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Fail(c, http.StatusInternalServerError, "Failed to register user", nil)
		return
	}

	response.OK(c, http.StatusCreated, "User registered successfully", nil)
}

// Login POST /api/login. The same message covers unknown email and wrong
// password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Validation Error", validation.ToDetails(err))
		return
	}

	_, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Fail(c, http.StatusInternalServerError, "Failed to log in", nil)
		return
	}

	response.OK(c, http.StatusOK, "User logged in successfully", gin.H{"token": token})
}

// Profile GET /api/profile (auth required).
func (h *AuthHandler) Profile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.Profile(c.Request.Context(), uid)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "User not found", nil)
		return
	}
	response.OK(c, http.StatusOK, "User profile data", gin.H{"user": userPayload(u)})
}

// Logout POST /api/logout. Deliberately NOT behind the auth middleware:
// revoking an already-revoked or unknown token still surfaces as success,
// so a double logout never errors.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	h.Svc.Logout(c.Request.Context(), token)
	response.OK(c, http.StatusOK, "User logged out successfully", nil)
}
