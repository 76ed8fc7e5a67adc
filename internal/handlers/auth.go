package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"twenty-one-go/internal/auth"
	"twenty-one-go/internal/config"
	"twenty-one-go/internal/middleware"
	"twenty-one-go/internal/models"
)

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func RegisterHandler(db *sql.DB, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req authRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		uLen := utf8.RuneCountInString(req.Username)
		if uLen < 3 || uLen > 32 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 3-32 characters"})
			return
		}

		if _, err := models.GetUserByUsername(db, req.Username); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		} else if !errors.Is(err, models.ErrNotFound) {
			writeAPIError(c, err)
			return
		}

		// passwords are not trimmed; surrounding spaces are valid characters
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			if auth.IsPasswordValidationError(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": strings.TrimPrefix(err.Error(), auth.ErrPasswordPolicy.Error()+": ")})
				return
			}
			writeAPIError(c, err)
			return
		}
		u, err := models.CreateUser(db, req.Username, hash)
		if err != nil {
			if errors.Is(err, models.ErrUsernameTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
				return
			}
			writeAPIError(c, err)
			return
		}

		token, err := auth.GenerateToken(u.ID, u.Username, cfg)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		setAuthCookie(c, cfg, token)
		log.Printf("user registered: user_id=%d", u.ID)
		c.JSON(http.StatusCreated, authResponse{Token: token, User: u})
	}
}

func LoginHandler(db *sql.DB, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req authRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}

		u, err := models.GetUserByUsername(db, req.Username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := auth.ComparePasswordHash(u.PasswordHash, req.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		token, err := auth.GenerateToken(u.ID, u.Username, cfg)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		setAuthCookie(c, cfg, token)
		c.JSON(http.StatusOK, authResponse{Token: token, User: u})
	}
}

// MeHandler returns the user behind the session, or 401.
func MeHandler(db *sql.DB, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := middleware.TokenFromRequest(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := auth.ParseAndValidateToken(token, cfg)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		u, err := models.GetUserByID(db, claims.UserID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u})
	}
}

func LogoutHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(auth.AuthCookieName, "", -1, "/", "", !cfg.IsDevelopment(), true)
		c.Status(http.StatusNoContent)
	}
}

func setAuthCookie(c *gin.Context, cfg config.Config, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AuthCookieName, token, int(cfg.JWTTTL.Seconds()), "/", "", !cfg.IsDevelopment(), true)
}
