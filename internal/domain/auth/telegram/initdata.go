package telegram

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/model"
)

const (
	keyUser     = "user"
	keyAuthDate = "auth_date"
	keyHash     = "hash"
)

// InitData is a decoded Mini App payload. Values keeps every pair as sent so
// the check string can be rebuilt from it.
type InitData struct {
	User     model.CanonicalUser
	AuthDate int64
	Hash     string
	Values   url.Values
}

type webAppUser struct {
	ID        json.Number `json:"id"`
	Username  *string     `json:"username"`
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
}

// Parse decodes raw initData. It fails with ErrMalformedPayload when the
// query or the user JSON cannot be decoded or a key repeats, and with
// ErrMissingAuthParameters when auth_date or hash is absent.
func Parse(raw string) (InitData, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitData{}, customErrors.NewMalformedPayload("query decode failed")
	}
	// Every pair must be covered by the signature.
	for k, v := range values {
		if len(v) > 1 {
			return InitData{}, customErrors.NewMalformedPayload(fmt.Sprintf("key %q repeats", k))
		}
	}

	userRaw, ok := values[keyUser]
	if !ok || len(userRaw) == 0 {
		return InitData{}, customErrors.NewMalformedPayload("user is missing")
	}
	user, err := parseUser(userRaw[0])
	if err != nil {
		return InitData{}, err
	}

	authDateRaw := values.Get(keyAuthDate)
	if authDateRaw == "" {
		return InitData{}, customErrors.NewMissingAuthParameters("auth_date is missing")
	}
	hash := values.Get(keyHash)
	if hash == "" {
		return InitData{}, customErrors.NewMissingAuthParameters("hash is missing")
	}

	authDate, err := strconv.ParseInt(authDateRaw, 10, 64)
	if err != nil {
		return InitData{}, customErrors.NewMalformedPayload("auth_date is not an integer")
	}

	return InitData{
		User:     user,
		AuthDate: authDate,
		Hash:     hash,
		Values:   values,
	}, nil
}

func parseUser(raw string) (model.CanonicalUser, error) {
	var u webAppUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return model.CanonicalUser{}, customErrors.NewMalformedPayload("user is not valid json")
	}
	id := u.ID.String()
	if !isDecimal(id) {
		return model.CanonicalUser{}, customErrors.NewMalformedPayload("user.id is not an integer")
	}
	return model.CanonicalUser{
		ID:        id,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}, nil
}

// isDecimal accepts an optional leading minus followed by digits only, so
// "1e3" and "1.0" are rejected even though they are valid JSON numbers.
func isDecimal(s string) bool {
	if s != "" && s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
