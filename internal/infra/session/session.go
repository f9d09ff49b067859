package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "session"
	TTL        = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims keeps the user id as a string; snowflake ids do not survive a float64 round trip.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) ID() (int64, error) {
	return strconv.ParseInt(c.UserID, 10, 64)
}

func Issue(secret []byte, userID int64, email, role string, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: strconv.FormatInt(userID, 10),
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	})
	return t.SignedString(secret)
}

func Parse(secret []byte, tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.ID(); err != nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
