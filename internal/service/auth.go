package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
)

type AuthService struct {
	profileRepository repository.ProfileRepository
	jwtSecret         string
	jwtExpiry         time.Duration
}

func NewAuthService(profileRepository repository.ProfileRepository, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		profileRepository: profileRepository,
		jwtSecret:         jwtSecret,
		jwtExpiry:         jwtExpiry,
	}
}

type SignupInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	IsCreator   bool   `json:"is_creator"`
}

func (s *AuthService) Signup(in SignupInput) (*model.Profile, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(strings.ToLower(in.Username))

	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.profileRepository.ByEmail(in.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.profileRepository.ByUsername(in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &model.Profile{
		Email:        in.Email,
		Username:     in.Username,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PasswordHash: hash,
		IsCreator:    in.IsCreator,
	}

	err = s.profileRepository.Create(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

func (s *AuthService) Login(email, password string) (*model.Profile, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	profile, err := s.profileRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	err = s.ComparePassword(password, profile.PasswordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return profile, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(profile *model.Profile) (string, error) {
	claims := jwt.MapClaims{
		"profile_id": profile.ID,
		"email":      profile.Email,
		"exp":        time.Now().Add(s.jwtExpiry).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ProfileFromToken resolves a JWT to the current profile record.
func (s *AuthService) ProfileFromToken(tokenString string) (*model.Profile, error) {
	claims, err := s.VerifyJWT(tokenString)
	if err != nil {
		return nil, err
	}

	profileID, ok := claims["profile_id"].(string)
	if !ok || profileID == "" {
		return nil, errors.New("token missing profile_id")
	}

	return s.profileRepository.ByID(profileID)
}
