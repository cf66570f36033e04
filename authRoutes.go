package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route setup
func AuthRoutes(r *gin.Engine, app *App) {
	r.POST("/api/v1/login", func(c *gin.Context) {
		handleLogin(c, app)
	})
	r.POST("/api/v1/password/forgot", func(c *gin.Context) {
		handleForgotPassword(c, app)
	})

	authed := r.Group("/api/v1", AuthMiddleware())
	authed.POST("/password/change", func(c *gin.Context) {
		handleChangePassword(c, app)
	})
}

// =================== LOGIN ===================

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func handleLogin(c *gin.Context, app *App) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Username == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Username and password are required"})
		return
	}

	user, found := app.FindUserByCredentials(input.Username, input.Password)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "❌ Invalid username or password"})
		return
	}

	respondWithToken(c, user)
}

// =================== CHANGE PASSWORD ===================

type ChangePasswordInput struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func handleChangePassword(c *gin.Context, app *App) {
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil || input.OldPassword == "" || input.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Old and new password are required"})
		return
	}
	if input.NewPassword != input.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ New passwords do not match"})
		return
	}

	if err := app.ChangePassword(GetUserID(c), input.OldPassword, input.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "✅ Password changed and saved to server"})
}

// =================== FORGOT PASSWORD ===================

type ForgotPasswordInput struct {
	Username string `json:"username"`
}

func handleForgotPassword(c *gin.Context, app *App) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Username is required"})
		return
	}

	newPassword, err := app.ForgotPassword(input.Username)
	if err != nil {
		if errors.Is(err, ErrAdminReset) {
			c.JSON(http.StatusForbidden, gin.H{"error": "❌ " + err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "✅ Password reset. Please change it after login",
		"password": newPassword,
	})
}

// =================== UTILITY ===================

func respondWithToken(c *gin.Context, user User) {
	token, err := GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "❌ Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Login successful",
		"token":   token,
		"role":    user.Role,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"name":     user.Name,
		},
	})
}
