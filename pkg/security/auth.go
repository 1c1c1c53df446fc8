package security

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"garment/pkg/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

var (
	mu          sync.RWMutex
	jwtSecret   []byte
	tokenExpire = 120 * time.Hour
)

// Configure sets the signing secret and token lifetime. It must be called
// before any token is issued or verified.
func Configure(secret string, expire time.Duration) error {
	if secret == "" {
		return errors.New("jwt secret must not be empty")
	}
	mu.Lock()
	defer mu.Unlock()
	jwtSecret = []byte(secret)
	if expire > 0 {
		tokenExpire = expire
	}
	return nil
}

func secret() ([]byte, error) {
	mu.RLock()
	defer mu.RUnlock()
	if len(jwtSecret) == 0 {
		return nil, errors.New("security is not configured")
	}
	return jwtSecret, nil
}

type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

func AuthenticateUser(ctx context.Context, username, password string, finder UserFinder) (*models.User, error) {
	user, err := finder.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func GenerateJWT(userID string, role string, username string) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}

	mu.RLock()
	expire := tokenExpire
	mu.RUnlock()

	claims := jwt.MapClaims{
		"userID":   userID,
		"role":     role,
		"username": username,
		"exp":      time.Now().Add(expire).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}

// GetUserIDFromToken returns the user id stored by JWTMiddleware.
func GetUserIDFromToken(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", fmt.Errorf("userID is not set")
	}

	return userID, nil
}
