package service

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/shared/models"
)

const accessTokenTTL = 24 * time.Hour

// AuthService implements registration, password verification and HS256
// access token issuance and parsing. Parsing is stateless: a token is
// either valid and unexpired or rejected, with one undifferentiated
// error so callers cannot probe validation internals.
type AuthService struct {
	repo      Repository
	jwtSecret []byte
}

type registerInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in registerInput) validate() error {
	return toValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.Length(3, 30)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 72)),
	))
}

func (a *AuthService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	in := registerInput{Username: username, Email: email, Password: password}
	if err := in.validate(); err != nil {
		return models.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	return a.repo.CreateUser(ctx, username, email, hash)
}

func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	id, hash, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", errors.New("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return "", errors.New("invalid credentials")
	}
	return a.IssueAccessToken(id, accessTokenTTL)
}

func (a *AuthService) IssueAccessToken(userID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.jwtSecret)
}

// ParseToken verifies a bearer token and returns its subject (user id).
func (a *AuthService) ParseToken(_ context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid token subject")
	}
	return sub, nil
}
