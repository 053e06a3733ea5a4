package auth

import (
	"context"
	"os"
	"time"

	autherrors "marketflow/internal/auth/errors"
	"marketflow/internal/employee"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, resp AuthResponse, err error)

	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)

	GetMe(ctx context.Context, employeeID string) (*AuthResponse, error)
}

type service struct {
	employeeRepo employee.Repository
}

func NewService(employeeRepo employee.Repository) Service {
	return &service{employeeRepo: employeeRepo}
}

func (s *service) Login(ctx context.Context, username, password string) (string, string, AuthResponse, error) {
	empl, err := s.employeeRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(empl.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if empl.Status != employee.StatusActive {
		return "", "", AuthResponse{}, autherrors.ErrAccountInactive
	}

	accessToken, err := s.generateToken(empl, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := s.generateToken(empl, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return accessToken, refreshToken, toAuthResponse(empl), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	employeeIDStr, ok := claims["employee_id"].(string)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	if _, err := uuid.Parse(employeeIDStr); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	// Re-read the employee so a role change or a deactivation takes effect
	// on the next refresh at the latest.
	empl, err := s.employeeRepo.FindByID(ctx, employeeIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}
	if empl.Status != employee.StatusActive {
		return "", "", AuthResponse{}, autherrors.ErrAccountInactive
	}

	newAccessToken, err := s.generateToken(empl, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	newRefreshToken, err := s.generateToken(empl, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccessToken, newRefreshToken, toAuthResponse(empl), nil
}

func (s *service) GetMe(ctx context.Context, employeeID string) (*AuthResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, autherrors.ErrInvalidToken
	}

	empl, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return nil, autherrors.ErrInvalidToken
	}

	resp := toAuthResponse(empl)
	return &resp, nil
}

func (s *service) generateToken(empl *employee.Employee, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"employee_id": empl.ID.String(),
		"role":        empl.RoleID,
		"full_name":   empl.FullName,
		"exp":         time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func toAuthResponse(empl *employee.Employee) AuthResponse {
	return AuthResponse{
		ID:       empl.ID.String(),
		FullName: empl.FullName,
		Username: empl.Username,
		RoleID:   empl.RoleID,
	}
}
