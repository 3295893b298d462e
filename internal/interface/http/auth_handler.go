package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fitness-app-api/internal/application"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
	"github.com/oksasatya/fitness-app-api/pkg/response"
	"github.com/oksasatya/fitness-app-api/pkg/validation"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailInUse         = "Email already in use"
	msgRegistrationError  = "Error during registration"
	msgSignedOut          = "You've been signed out!"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,displayname"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// authResponse is the body returned by login and register.
type authResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Avatar string   `json:"avatar"`
	Roles  []string `json:"roles"`
}

func (h *AuthHandler) signIn(c *gin.Context, res *application.AuthResult, message string) {
	h.Cookies.Set(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, authResponse{
		ID:     res.User.ID,
		Name:   res.User.Name,
		Email:  res.User.Email,
		Avatar: res.User.AvatarURL,
		Roles:  res.Roles,
	}, message, gin.H{"expires_at": res.ExpiresAt})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		loginFailure.Add(1)
		response.Error[any](c, http.StatusBadRequest, msgInvalidCredentials, validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		loginFailure.Add(1)
		response.Error[any](c, http.StatusBadRequest, msgInvalidCredentials, nil)
		return
	}
	loginSuccess.Add(1)
	h.signIn(c, res, "Login successful")
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		registerFailure.Add(1)
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		registerFailure.Add(1)
		switch {
		case errors.Is(err, application.ErrEmailInUse):
			response.Error[any](c, http.StatusBadRequest, msgEmailInUse, nil)
		default:
			h.Logger.WithError(err).Error("registration failed")
			response.Error[any](c, http.StatusBadRequest, msgRegistrationError, nil)
		}
		return
	}
	registerSuccess.Add(1)
	h.signIn(c, res, "Registration successful")
}

// Logout POST /api/auth/logout. Tokens are stateless; only the cookie is cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, msgSignedOut, nil)
}
