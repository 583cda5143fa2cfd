package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

var signupMessages = fieldMessages{
	"email": {
		"required": constants.MsgEmailRequired,
		"email":    constants.MsgEmailInvalid,
	},
	"name": {
		"required": constants.MsgNameRequired,
	},
	"password": {
		"required": constants.MsgPasswordRequired,
	},
}

// Signup registers a new user.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email    string  `json:"email" binding:"required,email,max=255"`
		Name     string  `json:"name" binding:"required,max=255"`
		Mobile   *string `json:"mobile" binding:"omitempty,max=20"`
		Password *string `json:"password" binding:"required"`
	}

	var req SignupRequest
	if !bindJSON(c, &req, signupMessages) {
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Email:    req.Email,
		Name:     req.Name,
		Mobile:   req.Mobile,
		Password: *req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Success(c, http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if !bindJSON(c, &req, signupMessages) {
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, fmt.Errorf("failed to save session: %w", err))
		return
	}

	apierrors.Success(c, http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, fmt.Errorf("failed to clear session: %w", err))
		return
	}

	apierrors.SuccessWithMessage(c, http.StatusOK, "Logged out successfully", nil)
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Success(c, http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.BadRequestWithDetails(c, constants.MsgEmailExists, apierrors.NewFieldError("email", constants.MsgEmailExists))
	case errors.Is(err, services.ErrEmailRequired):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("email", constants.MsgEmailRequired))
	case errors.Is(err, services.ErrEmailInvalid):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("email", constants.MsgEmailInvalid))
	case errors.Is(err, services.ErrNameRequired):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("name", constants.MsgNameRequired))
	case errors.Is(err, services.ErrPasswordBlank):
		apierrors.ValidationFailed(c, apierrors.NewFieldError("password", constants.MsgPasswordBlank))
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, constants.MsgInvalidCredentials)
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, constants.MsgUserNotFound)
	// Signup failures past validation are reported as bad requests; the
	// service has already logged the cause.
	case errors.Is(err, services.ErrSignupFailed):
		apierrors.BadRequest(c, constants.MsgServerNotAbleToProcess)
	case errors.Is(err, services.ErrFailedToHashPassword):
		apierrors.BadRequest(c, constants.MsgSomethingWentWrong)
	default:
		apierrors.InternalError(c, err)
	}
}
