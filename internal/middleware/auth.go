package middleware

import (
	"net/http"
	"strings"
	"time"

	"iquiz-service/internal/config"
	"iquiz-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookie = "iquiz_session"
	CSRFCookie    = "iquiz_csrf"
	CSRFHeader    = "X-CSRF-Token"

	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserType  = "userType"
)

type Claims struct {
	UserID   string          `json:"userId"`
	Email    string          `json:"email"`
	UserType models.UserType `json:"userType"`
	jwt.RegisteredClaims
}

// IssueToken mints the session JWT handed out on login.
func IssueToken(user *models.User) (string, error) {
	cfg := config.ServiceConfig
	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: user.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.JWTExpiryHours) * time.Hour)),
			Issuer:    "iquiz-service",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// RequireAuth validates the session token from the cookie (or a Bearer
// header for non-browser clients) and, for mutating verbs, checks the
// double-submit CSRF token against its cookie twin.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			abortUnauthorized(c, "missing session token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(config.ServiceConfig.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid or expired session token")
			return
		}

		if isMutating(c.Request.Method) && !csrfOK(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "CSRF token mismatch",
				"error":   "CSRF token mismatch",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserType, string(claims.UserType))
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// csrfOK implements the double-submit check: the header value must match
// the cookie the server set at login. Bearer-auth clients skip it since
// they carry no ambient credential.
func csrfOK(c *gin.Context) bool {
	if _, err := c.Cookie(SessionCookie); err != nil {
		return true
	}
	cookie, err := c.Cookie(CSRFCookie)
	if err != nil || cookie == "" {
		return false
	}
	return c.GetHeader(CSRFHeader) == cookie
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"error":   message,
	})
}

// UserID pulls the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
