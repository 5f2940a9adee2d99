package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simplexsales/backend/dto"
	"github.com/simplexsales/backend/models"
	"github.com/simplexsales/backend/services"
	"github.com/simplexsales/backend/utils"
)

func Register(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := auth.Register(c.Request.Context(), body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func Login(auth *services.AuthService) gin.HandlerFunc {
	return loginHandler(auth, "")
}

// LoginWithRole serves /auth/login/:role for the role-scoped variants.
func LoginWithRole(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch models.Role(c.Param("role")) {
		case models.RoleUser:
			loginHandler(auth, models.RoleUser)(c)
		case models.RoleAdmin:
			loginHandler(auth, models.RoleAdmin)(c)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown login role"})
		}
	}
}

func loginHandler(auth *services.AuthService, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := auth.Login(c.Request.Context(), body, role)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func Logout(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticatedUserID(c)
		if !ok {
			return
		}
		if err := auth.Logout(c.Request.Context(), userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

func Refresh(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RefreshDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token required"})
			return
		}

		result, err := auth.Refresh(c.Request.Context(), body.RefreshToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  result.AccessToken,
			"refreshToken": result.RefreshToken,
		})
	}
}

func ForgotPassword(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ForgotPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := auth.ForgotPassword(c.Request.Context(), body.Email); err != nil {
			respondError(c, err)
			return
		}
		// Same response whether or not the account exists.
		c.JSON(http.StatusOK, gin.H{"message": services.ForgotPasswordMessage})
	}
}

func ResetPassword(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ResetPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := auth.ResetPassword(c.Request.Context(), c.Param("resetToken"), body.Password); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
	}
}

func VerifyEmail(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.VerifyEmail(c.Request.Context(), c.Param("verificationToken")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
	}
}

func ResendVerification(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticatedUserID(c)
		if !ok {
			return
		}
		if err := auth.ResendVerification(c.Request.Context(), userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
	}
}

func ChangePassword(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticatedUserID(c)
		if !ok {
			return
		}

		var body dto.ChangePasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := auth.ChangePassword(c.Request.Context(), userID, body); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
	}
}

func GetCurrentUser(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticatedUserID(c)
		if !ok {
			return
		}
		user, err := auth.CurrentUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// GetUsers serves the admin user listing.
func GetUsers(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParseIntDefault(c.Query("page"), 1)
		limit := utils.ParseIntDefault(c.Query("limit"), 50)
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 50
		}

		users, total, err := auth.ListUsers(c.Request.Context(), page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"users": users,
			"total": total,
			"page":  page,
			"limit": limit,
		})
	}
}
