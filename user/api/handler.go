package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "companion-chat/backend/pkg/errors"
	"companion-chat/backend/pkg/middleware"
	"companion-chat/backend/user/models"
	"companion-chat/backend/user/repository"
	"companion-chat/backend/user/service"
)

// UserHandler exposes signup, login and profile endpoints
type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// RegisterPublicRoutes mounts the unauthenticated auth endpoints
func (h *UserHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
}

// RegisterProtectedRoutes mounts endpoints that require a valid token
func (h *UserHandler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, err.Error()))
		return
	}

	resp, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.Error(apperrors.NewConflictError(apperrors.CodeValidation, "email already registered"))
			return
		}
		c.Error(apperrors.NewInternalServerError(apperrors.CodeInternal, "failed to create account"))
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.Error(apperrors.NewUnauthorizedError(apperrors.CodeUnauthorized, "invalid email or password"))
			return
		}
		c.Error(apperrors.NewInternalServerError(apperrors.CodeInternal, "failed to authenticate"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == 0 {
		c.Error(apperrors.NewUnauthorizedError(apperrors.CodeUnauthorized, "authentication required"))
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.Error(apperrors.NewNotFoundError(apperrors.CodeNotFound, "account not found"))
			return
		}
		c.Error(apperrors.NewInternalServerError(apperrors.CodeInternal, "failed to load account"))
		return
	}

	c.JSON(http.StatusOK, user)
}
