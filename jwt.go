package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

// Secret key for the HTTP session tokens, from .env
var jwtSecret []byte

// InitJWT resolves the signing secret. JWT_SECRET is required; without it
// every deployment would sign tokens with a guessable constant.
func InitJWT() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ No .env file found, using ambient environment")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("missing required environment variable JWT_SECRET")
	}
	jwtSecret = []byte(secret)
	return nil
}

// Claims carried inside a session token
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"` // "admin" or "manager"
	jwt.RegisteredClaims
}

// GenerateToken issues a session token for a logged-in user
func GenerateToken(user User) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// AuthMiddleware validates the bearer token and puts the caller's identity
// on the context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "❌ Token not found"})
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})

		if err != nil || !token.Valid {
			log.Printf("Token error: %v\n", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "❌ Token invalid or expired"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "❌ Failed to parse token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RoleMiddleware restricts a route group to the given roles
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "❌ Role not found"})
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "❌ Access denied (role not allowed)"})
		c.Abort()
	}
}

// Context helpers

func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

func GetUsername(c *gin.Context) string {
	return c.GetString("username")
}

func GetRole(c *gin.Context) string {
	return c.GetString("role")
}

// CurrentUser resolves the token's subject against the cached users table.
// A token can outlive its account (deleted manager), so this can fail.
func CurrentUser(c *gin.Context, app *App) (User, bool) {
	user, found := app.UserByID(GetUserID(c))
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "❌ Account no longer exists"})
		return User{}, false
	}
	return user, true
}
