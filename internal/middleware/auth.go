package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/auth"
)

const ClaimsKey = "claims"

type TokenValidator interface {
	ValidateAccessToken(token string) (*domain.Claims, error)
}

// Authenticate requires a valid Bearer access token.
func Authenticate(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.Header("WWW-Authenticate", `Bearer realm="saludvital"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			return
		}

		claims, err := v.ValidateAccessToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// AuthenticatePage reads the access token from the session cookie and sends
// anonymous visitors to loginPath, remembering where they were going.
func AuthenticatePage(v TokenValidator, cookieName, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			if claims, err := v.ValidateAccessToken(token); err == nil {
				c.Set(ClaimsKey, claims)
				c.Next()
				return
			}
		}

		next := c.Request.URL.RequestURI()
		c.Redirect(http.StatusSeeOther, loginPath+"?next="+url.QueryEscape(next))
		c.Abort()
	}
}

// RequireRoles lets the request through only for the listed roles. It must
// run after Authenticate or AuthenticatePage.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			deny(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			deny(c, http.StatusForbidden, "access denied")
			return
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) (*domain.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.Claims)
	return claims, ok && claims != nil
}

func deny(c *gin.Context, status int, msg string) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	c.String(status, msg)
	c.Abort()
}
