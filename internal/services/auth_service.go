package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"asinity/internal/domain"
	"asinity/internal/repos"
)

type AuthService struct {
	Users      *repos.UserRepo
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims carried by both token kinds; Kind separates access from refresh so
// a refresh token can never authorize a request directly.
type Claims struct {
	Role string `json:"role"`
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(email, name, password string) (*domain.User, error) {
	taken, err := s.Users.EmailTaken(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Hash:  string(h),
		Role:  "USER",
	}
	if err := s.Users.Insert(u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) Login(email, password string) (TokenPair, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, domain.ErrBadCreds
		}
		return TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return TokenPair{}, domain.ErrBadCreds
	}

	access, err := s.sign(u.ID, u.Role, "access", s.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(u.ID, u.Role, "refresh", s.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh swaps a valid refresh token for a fresh access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.Parse(refreshToken)
	if err != nil || claims.Kind != "refresh" {
		return "", domain.ErrBadCreds
	}
	return s.sign(claims.Subject, claims.Role, "access", s.AccessTTL)
}

func (s *AuthService) sign(userID, role, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Parse validates signature, method and expiry and returns the claims.
func (s *AuthService) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrBadCreds
	}
	return claims, nil
}
