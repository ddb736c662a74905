package telegram

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/model"
	"go.uber.org/zap"
)

var placeholderTokens = map[string]struct{}{
	"changeme":       {},
	"change_me":      {},
	"your_bot_token": {},
	"<bot_token>":    {},
	"bot_token":      {},
	"token":          {},
	"xxx":            {},
	"todo":           {},
}

// Authenticator validates Mini App initData for a single bot. It holds no
// mutable state and is safe for concurrent use.
type Authenticator struct {
	botToken string
	mode     AuthMode
	maxAge   time.Duration
	now      func() time.Time
	log      *zap.Logger
}

type Option func(*Authenticator)

func WithMaxAge(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.maxAge = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.log = l
		}
	}
}

// ValidateBotToken rejects empty and placeholder tokens.
func ValidateBotToken(token string) error {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return customErrors.NewConfiguration("telegram bot token is empty")
	}
	if _, ok := placeholderTokens[t]; ok {
		return customErrors.NewConfiguration("telegram bot token is a placeholder")
	}
	return nil
}

func New(botToken string, mode AuthMode, opts ...Option) (*Authenticator, error) {
	if err := ValidateBotToken(botToken); err != nil {
		return nil, err
	}
	if mode != ModeStrict && mode != ModeDevelopmentBypass {
		return nil, customErrors.NewConfiguration(fmt.Sprintf("unsupported auth mode %s", mode))
	}

	a := &Authenticator{
		botToken: botToken,
		mode:     mode,
		maxAge:   DefaultMaxAge,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.mode == ModeDevelopmentBypass {
		a.log.Warn("telegram initData signature and freshness checks are DISABLED",
			zap.Stringer("auth_mode", a.mode),
		)
	}
	return a, nil
}

func (a *Authenticator) Mode() AuthMode { return a.mode }

// Validate authenticates raw initData and returns the embedded user.
// Rejections wrap ErrMalformedPayload, ErrMissingAuthParameters,
// ErrInvalidSignature or ErrStaleAuthData.
func (a *Authenticator) Validate(raw string) (model.CanonicalUser, error) {
	data, err := Parse(raw)
	if err != nil {
		a.reject(err, "")
		return model.CanonicalUser{}, err
	}

	if a.mode == ModeDevelopmentBypass {
		a.log.Warn("telegram initData accepted without verification",
			zap.String("user", digest(data.User.ID)),
			zap.Stringer("auth_mode", a.mode),
		)
		return data.User, nil
	}

	if !Verify(a.botToken, data.Values) {
		err := customErrors.ErrInvalidSignature
		a.reject(err, data.User.ID)
		return model.CanonicalUser{}, err
	}

	if err := CheckFreshness(data.AuthDate, a.now(), a.maxAge); err != nil {
		a.reject(err, data.User.ID)
		return model.CanonicalUser{}, err
	}

	a.log.Debug("telegram initData accepted", zap.String("user", digest(data.User.ID)))
	return data.User, nil
}

func (a *Authenticator) reject(err error, userID string) {
	fields := []zap.Field{zap.String("kind", customErrors.Kind(err))}
	if userID != "" {
		fields = append(fields, zap.String("user", digest(userID)))
	}
	a.log.Info("telegram initData rejected", fields...)
}

func digest(id string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(id)))
}
