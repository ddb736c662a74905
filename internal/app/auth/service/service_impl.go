package service

import (
	"context"
	"errors"
	"time"

	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var defaultRoles = []string{"user"}

// InitDataValidator authenticates a raw Mini App initData string.
type InitDataValidator interface {
	Validate(raw string) (model.CanonicalUser, error)
}

type authService struct {
	userRepo  repo.UserRepo
	tokenRepo repo.TokenRepo
	jwtUtil   jwt.JWTUtil
	initData  InitDataValidator
	v         *validator.Validate
	log       *zap.Logger
}

type Service interface {
	TelegramAuth(context.Context, dto.TelegramAuthDTO) (model.TokenPair, error)
	Validate(context.Context, dto.ValidateDTO) (model.User, error)
	Refresh(context.Context, dto.RefreshDTO) (model.TokenPair, error)
	Logout(context.Context, dto.LogoutDTO) error
}

func New(
	ur repo.UserRepo,
	tr repo.TokenRepo,
	jm jwt.JWTUtil,
	iv InitDataValidator,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo: ur, tokenRepo: tr, jwtUtil: jm, initData: iv, v: v, log: log,
	}
}

func (a *authService) TelegramAuth(ctx context.Context, in dto.TelegramAuthDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		metrics.ObserveTelegramAuth(customErrors.Kind(customErrors.ErrInvalidArgument))
		return model.TokenPair{}, customErrors.NewInvalidArgument("initData is required")
	}

	cu, err := a.initData.Validate(in.InitData)
	if err != nil {
		metrics.ObserveTelegramAuth(customErrors.Kind(err))
		return model.TokenPair{}, err
	}

	user, err := a.upsertUser(ctx, cu)
	if err != nil {
		metrics.ObserveTelegramAuth(customErrors.Kind(err))
		return model.TokenPair{}, err
	}

	pair, err := a.issueTokens(ctx, user)
	if err != nil {
		metrics.ObserveTelegramAuth(customErrors.Kind(err))
		return model.TokenPair{}, err
	}
	metrics.ObserveTelegramAuth("accepted")
	return pair, nil
}

// upsertUser creates the user on first sight and refreshes profile fields
// afterwards. A concurrent first login loses the insert race and re-reads.
func (a *authService) upsertUser(ctx context.Context, cu model.CanonicalUser) (model.User, error) {
	user, err := a.userRepo.GetUserByTelegramID(ctx, cu.ID)
	switch {
	case err == nil:
		if updateUser(&user, cu) {
			if err := a.userRepo.UpdateUser(ctx, user); err != nil {
				return model.User{}, customErrors.WrapInternal(err, "UpdateUser")
			}
		}
		return user, nil

	case errors.Is(err, customErrors.ErrNotFound):
		user = model.User{
			ID:         uuid.New(),
			TelegramID: cu.ID,
			Username:   nonEmpty(deref(cu.Username), "tg"+cu.ID),
			FirstName:  deref(cu.FirstName),
			LastName:   deref(cu.LastName),
		}
		if _, err := a.userRepo.CreateUser(ctx, user); err != nil {
			if errors.Is(err, customErrors.ErrAlreadyExists) {
				existing, gerr := a.userRepo.GetUserByTelegramID(ctx, cu.ID)
				if gerr != nil {
					return model.User{}, customErrors.WrapInternal(gerr, "GetUserByTelegramID")
				}
				return existing, nil
			}
			return model.User{}, customErrors.WrapInternal(err, "CreateUser")
		}
		a.log.Info("telegram user created", zap.String("user_id", user.ID.String()))
		return user, nil

	default:
		return model.User{}, customErrors.WrapInternal(err, "GetUserByTelegramID")
	}
}

func (a *authService) Validate(ctx context.Context, dto dto.ValidateDTO) (model.User, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.ValidateAccessToken(dto.AccessToken)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	revoked, err := a.tokenRepo.IsAccessRevoked(ctx, claims.ID)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Validate")
	}
	if revoked {
		return model.User{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	user, err := a.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	return user, nil
}

func (a *authService) Refresh(ctx context.Context, dto dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	revoked, err := a.tokenRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	if revoked {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}
	user, err := a.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	if err = a.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	a.revokeAccess(ctx, dto.AccessToken)

	return a.issueTokens(ctx, user)
}

func (a *authService) Logout(ctx context.Context, dto dto.LogoutDTO) error {
	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return customErrors.ErrInvalidToken
	}

	if err := a.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	a.revokeAccess(ctx, dto.AccessToken)
	return nil
}

// revokeAccess is best effort: an expired or missing access token is not an error.
func (a *authService) revokeAccess(ctx context.Context, raw string) {
	if raw == "" {
		return
	}
	acc, err := a.jwtUtil.ValidateAccessToken(raw)
	if err != nil {
		return
	}
	if err := a.tokenRepo.RevokeAccess(ctx, acc.ID, acc.ExpiresAt.Time); err != nil {
		a.log.Warn("revoke access token", zap.Error(err))
	}
}

func (a *authService) issueTokens(ctx context.Context, user model.User) (model.TokenPair, error) {
	at, atExp, _, err := a.jwtUtil.GenerateAccessToken(user.ID, user.TelegramID, defaultRoles)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, rtExp, jti, err := a.jwtUtil.GenerateRefreshToken(user.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}
	if err = a.tokenRepo.Store(ctx, jti, rtExp); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "StoreRefresh")
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:     at,
		RefreshToken:    rt,
		AccessTTL:       atExp.Sub(now),
		RefreshTTL:      rtExp.Sub(now),
		UserId:          user.ID,
		RefreshTokenJTI: jti,
	}, nil
}

func updateUser(u *model.User, cu model.CanonicalUser) (changed bool) {
	if cu.Username != nil && *cu.Username != "" && u.Username != *cu.Username {
		u.Username, changed = *cu.Username, true
	}
	if cu.FirstName != nil && u.FirstName != *cu.FirstName {
		u.FirstName, changed = *cu.FirstName, true
	}
	if cu.LastName != nil && u.LastName != *cu.LastName {
		u.LastName, changed = *cu.LastName, true
	}
	return
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

