package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okravchenko/contactbook/internal/adapters/transport/http/middleware"
	"github.com/okravchenko/contactbook/internal/app/auth"
	"github.com/okravchenko/contactbook/internal/app/dto"
	customErrors "github.com/okravchenko/contactbook/internal/domain/errors"
	"github.com/okravchenko/contactbook/internal/domain/model"
)

type authHandler struct {
	svc auth.Service
}

func (h *authHandler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// login accepts the OAuth2 password-grant form shape: username + password
// as form fields.
func (h *authHandler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *authHandler) refreshToken(c *gin.Context) {
	var body dto.RefreshDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *authHandler) confirmedEmail(c *gin.Context) {
	already, err := h.svc.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed"})
}

func (h *authHandler) requestEmail(c *gin.Context) {
	var body dto.RequestEmailDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	already, err := h.svc.ResendConfirmation(c.Request.Context(), body.Email)
	if err != nil {
		handleError(c, err)
		return
	}
	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Check your email for confirmation"})
}

func (h *authHandler) resetPassword(c *gin.Context) {
	var body dto.ResetPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.svc.RequestPasswordReset(c.Request.Context(), body)
	switch {
	case errors.Is(err, customErrors.ErrVerification):
		// Unknown address looks identical to success.
		c.JSON(http.StatusOK, gin.H{"message": "Verification error"})
	case errors.Is(err, customErrors.ErrEmailNotConfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your email is not confirmed"})
	case err != nil:
		handleError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Check your email for confirmation"})
	}
}

func (h *authHandler) confirmResetPassword(c *gin.Context) {
	err := h.svc.ConfirmPasswordReset(c.Request.Context(), c.Param("token"))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Token is invalid or the user is not found."})
	case err != nil:
		handleError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
	}
}

func (h *authHandler) public(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Public content"})
}

func (h *authHandler) moderator(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Hello, %s! This route is available for moderators and admins.", user.Username),
	})
}

func (h *authHandler) admin(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Hello, %s! This route is available for admins.", user.Username),
	})
}

var (
	moderatorRoles = []model.Role{model.RoleModerator, model.RoleAdmin}
	adminRoles     = []model.Role{model.RoleAdmin}
)
