package telegram

import (
	"fmt"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
)

// AuthMode selects whether signatures and freshness are enforced.
type AuthMode int

const (
	// ModeStrict verifies the signature and the auth_date window.
	ModeStrict AuthMode = iota
	// ModeDevelopmentBypass accepts any payload that parses. Never enable it
	// outside local development.
	ModeDevelopmentBypass
)

func (m AuthMode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeDevelopmentBypass:
		return "development_bypass"
	default:
		return fmt.Sprintf("AuthMode(%d)", int(m))
	}
}

// ParseAuthMode maps AUTH_MODE values to an AuthMode. Empty means strict.
func ParseAuthMode(s string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ModeStrict, nil
	case "development_bypass":
		return ModeDevelopmentBypass, nil
	default:
		return ModeStrict, customErrors.NewConfiguration(fmt.Sprintf("unknown auth mode %q", s))
	}
}
