package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"ourtime-api/core/cache"
	"ourtime-api/core/constants"
	"ourtime-api/core/errors"
	"ourtime-api/core/logger"
	"ourtime-api/core/utils"
	"ourtime-api/modules/auth/dto"
	"ourtime-api/modules/auth/entity"
	"ourtime-api/modules/auth/repository"
)

type AuthService struct {
	repo  repository.UserRepositoryInterface
	cache *cache.Cache
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenPairResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenPairResponse, *errors.AppError)
	Logout(ctx context.Context, token string) *errors.AppError
	RefreshToken(ctx context.Context, token string) (*dto.TokenPairResponse, *errors.AppError)
	GetMe(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, *errors.AppError)
}

func NewAuthService(repo repository.UserRepositoryInterface, c *cache.Cache) AuthServiceInterface {
	return &AuthService{repo: repo, cache: c}
}

func (service *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenPairResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "a valid email is required", nil)
	}
	if len(req.Password) < 8 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "password must be at least 8 characters", nil)
	}

	existing, err := service.repo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Error("AuthService:Register:GetUserByEmail:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check existing user", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "email already registered", nil)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to hash password", err)
	}

	created, err := service.repo.CreateUser(ctx, &entity.User{
		Email:        email,
		Nickname:     strings.TrimSpace(req.Nickname),
		PasswordHash: hashed,
	})
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok {
			return nil, ae
		}
		logger.Error("AuthService:Register:CreateUser:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create user", err)
	}

	return service.issueTokens(created.ID)
}

// Login authenticates a user with email and password. Failed attempts are
// counted in Redis and the account email is throttled after too many.
func (service *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenPairResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := service.repo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Error("AuthService:Login:GetUserByEmail:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid email or password", nil)
	}
	if !user.IsActive {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "account is disabled", nil)
	}

	if !utils.ComparePassword(user.PasswordHash, req.Password) {
		attempts, errIncrement := service.cache.IncrementLoginAttempt(ctx, email)
		if errIncrement != nil {
			logger.Error("AuthService:Login:IncrementLoginAttempt:Error:", errIncrement)
		}
		if attempts >= constants.MaxLoginAttempts {
			return nil, errors.NewAppError(errors.ErrUnauthorized, "too many failed attempts, try again later", nil)
		}
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid email or password", nil)
	}

	if errReset := service.cache.ResetLoginAttempts(ctx, email); errReset != nil {
		logger.Error("AuthService:Login:ResetLoginAttempts:Error:", errReset)
	}

	return service.issueTokens(user.ID)
}

func (service *AuthService) Logout(ctx context.Context, token string) *errors.AppError {
	if err := service.cache.AddToTokenBlacklist(ctx, token); err != nil {
		logger.Error("AuthService:Logout:AddToBlacklist:Error:", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to add token to blacklist", err)
	}
	return nil
}

// RefreshToken exchanges a valid refresh token for a fresh pair. The used
// refresh token is blacklisted so it cannot be replayed.
func (service *AuthService) RefreshToken(ctx context.Context, token string) (*dto.TokenPairResponse, *errors.AppError) {
	blacklisted, err := service.cache.IsTokenBlacklisted(ctx, token)
	if err != nil {
		logger.Error("AuthService:RefreshToken:IsTokenBlacklisted:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check token blacklist", err)
	}
	if blacklisted {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "token is blacklisted", nil)
	}

	claims, err := utils.ValidateAndParseToken(token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid token", nil)
	}
	if claims.Scope != constants.ScopeTokenRefresh {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "refresh token required", nil)
	}

	user, errGet := service.repo.GetUserByID(ctx, claims.UserID)
	if errGet != nil {
		logger.Error("AuthService:RefreshToken:GetUserByID:Error:", errGet)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", errGet)
	}
	if user == nil || !user.IsActive {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "user not found or inactive", nil)
	}

	if errBlacklist := service.cache.AddToTokenBlacklist(ctx, token); errBlacklist != nil {
		logger.Error("AuthService:RefreshToken:AddToBlacklist:Error:", errBlacklist)
	}

	return service.issueTokens(user.ID)
}

func (service *AuthService) GetMe(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, *errors.AppError) {
	user, err := service.repo.GetUserByID(ctx, userID)
	if err != nil {
		logger.Error("AuthService:GetMe:GetUserByID:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}
	return dto.ToUserResponse(user), nil
}

func (service *AuthService) issueTokens(userID uuid.UUID) (*dto.TokenPairResponse, *errors.AppError) {
	accessToken, err := utils.GenerateToken(userID, constants.ScopeTokenAccess)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate access token", err)
	}
	refreshToken, err := utils.GenerateToken(userID, constants.ScopeTokenRefresh)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate refresh token", err)
	}
	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
