package jwt

import (
	"testing"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTPrivateKeyPath: "testdata/priv.pem",
		JWTPublicKeyPath:  "testdata/pub.pem",
		AccessTokenTTL:    time.Minute,
		RefreshTokenTTL:   time.Hour,
		Issuer:            "test",
		Audience:          "test",
	}
}

func TestJWTUtil_GenerateValidate(t *testing.T) {
	util, err := NewJWTUtil(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	uid := uuid.New()
	token, exp, jti, err := util.GenerateAccessToken(uid, "9007199254740993", []string{"user"})
	if err != nil || exp.IsZero() || jti == "" {
		t.Fatalf("bad generate: %v", err)
	}
	claims, err := util.ValidateAccessToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != uid.String() {
		t.Fatalf("want %s got %s", uid, claims.Subject)
	}
	if claims.ID != jti || claims.TelegramID != "9007199254740993" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "user" {
		t.Fatalf("roles: %v", claims.Roles)
	}
}

func TestJWTUtil_MissingKeys(t *testing.T) {
	cfg := testConfig()
	cfg.JWTPrivateKeyPath = "testdata/absent.pem"
	if _, err := NewJWTUtil(cfg); !customErrors.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestJWTUtil_ValidateErrors(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	// invalid token string
	if _, err := util.ValidateAccessToken("bad"); !customErrors.IsInvalidToken(err) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	// same key, other issuer
	otherCfg := testConfig()
	otherCfg.Issuer = "wrong"
	other, _ := NewJWTUtil(otherCfg)
	tok, _, _, _ := other.GenerateAccessToken(uuid.New(), "1", nil)
	if _, err := util.ValidateAccessToken(tok); err == nil {
		t.Fatal("expected issuer error")
	}
}

func TestJWTUtil_RefreshCycle(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	uid := uuid.New()
	rTok, exp, jti, err := util.GenerateRefreshToken(uid)
	if err != nil || exp.IsZero() || jti == "" {
		t.Fatalf("bad generate: %v", err)
	}
	cl, err := util.ValidateRefreshToken(rTok)
	if err != nil || cl.Subject != uid.String() || cl.ID != jti {
		t.Fatalf("validate error: %v", err)
	}
}

func TestJWTUtil_Expired(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	util.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, _, _, err := util.GenerateAccessToken(uuid.New(), "1", nil)
	if err != nil {
		t.Fatal(err)
	}
	util.now = time.Now
	if _, err := util.ValidateAccessToken(tok); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestJWTUtil_InvalidAlg(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte("x"))
	if _, err := util.ValidateAccessToken(token); err == nil {
		t.Fatal("expected invalid alg")
	}
	if _, err := util.ValidateRefreshToken(token); err == nil {
		t.Fatal("expected invalid alg")
	}
}

func TestJWTUtil_InvalidAudience(t *testing.T) {
	cfg := testConfig()
	util, _ := NewJWTUtil(cfg)
	otherCfg := *cfg
	otherCfg.Audience = "other"
	other, _ := NewJWTUtil(&otherCfg)

	tok, _, _, _ := other.GenerateAccessToken(uuid.New(), "1", nil)
	if _, err := util.ValidateAccessToken(tok); err == nil {
		t.Fatal("expected audience error")
	}
	rt, _, _, _ := other.GenerateRefreshToken(uuid.New())
	if _, err := util.ValidateRefreshToken(rt); err == nil {
		t.Fatal("expected audience error")
	}
}

func TestJWTUtil_TokenTypesNotInterchangeable(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	uid := uuid.New()

	at, _, _, _ := util.GenerateAccessToken(uid, "1", nil)
	rt, _, _, _ := util.GenerateRefreshToken(uid)

	if _, err := util.ValidateRefreshToken(at); !customErrors.IsInvalidToken(err) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
	if _, err := util.ValidateAccessToken(rt); !customErrors.IsInvalidToken(err) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
}
