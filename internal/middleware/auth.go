package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/logger"
	"pitaka/internal/services"
)

// Context keys set by the authentication middlewares.
const (
	SubjectKey = "subject"
	EmailKey   = "email"
	NameKey    = "name"
	UserIDKey  = "userID"
)

// ProviderClaims are the claims read from identity-provider tokens.
type ProviderClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// ParseProviderToken verifies an HMAC-signed provider token. When issuer is
// non-empty the iss claim must match it.
func ParseProviderToken(tokenString string, secret []byte, issuer string) (*ProviderClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &ProviderClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// AuthMiddleware verifies the bearer token and stores its subject, email and
// name in the context.
func AuthMiddleware(secret, issuer string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := ParseProviderToken(parts[1], key, issuer)
		if err != nil {
			logger.Get().Debugw("rejected bearer token", "error", err)
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(EmailKey, claims.Email)
		c.Set(NameKey, claims.Name)
		c.Next()
	}
}

// UserResolver maps the authenticated subject to a local user, creating it on
// first sight, and stores the user id in the context. It must run after
// AuthMiddleware.
func UserResolver(users services.UserServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.EnsureUser(c.GetString(SubjectKey), c.GetString(EmailKey), c.GetString(NameKey))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if appErr.Internal != nil {
		logger.Get().Errorw("request aborted",
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
