package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/transport/http/dto"
	httpmw "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/transport/http/middleware"
	appsvc "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/app/auth/service"
	authErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/health"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	refreshCookie = "refresh_token"

	// tmaScheme is the Authorization scheme Mini Apps use to pass raw initData.
	tmaScheme      = "tma"
	initDataHeader = "X-Telegram-Init-Data"
)

type Handler struct {
	svc          appsvc.Service
	checker      *health.Checker
	log          *zap.Logger
	cookieDomain string
	secure       bool
}

func NewHandler(svc appsvc.Service, checker *health.Checker, cookieDomain string, secure bool, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, checker: checker, log: log, cookieDomain: cookieDomain, secure: secure}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/auth/telegram", h.telegramAuth)
	r.POST("/refresh", h.refresh)
	r.POST("/logout", h.logout)
	r.GET("/me", httpmw.RequireAuth(h.svc), h.me)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (h *Handler) telegramAuth(c *gin.Context) {
	var body dto.TelegramAuthDTO

	// JSON или form-urlencoded; пустое тело допустимо, если initData пришла в заголовке
	if err := c.ShouldBind(&body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c)
		return
	}
	if body.InitData == "" {
		body.InitData = headerInitData(c)
	}

	h.log.Debug("telegram auth request",
		zap.String("origin", c.GetHeader("Origin")),
		zap.String("content_type", c.ContentType()),
		zap.Int("init_data_len", len(body.InitData)),
	)

	pair, err := h.svc.TelegramAuth(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.issueTokens(c, pair)
}

func (h *Handler) refresh(c *gin.Context) {
	var body dto.RefreshDTO
	if !bindOptionalJSON(c, &body) {
		return
	}
	body.RefreshToken = orCookie(c, body.RefreshToken, refreshCookie)
	body.AccessToken = orCookie(c, body.AccessToken, httpmw.AccessCookie)

	pair, err := h.svc.Refresh(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.issueTokens(c, pair)
}

func (h *Handler) logout(c *gin.Context) {
	var body dto.LogoutDTO
	if !bindOptionalJSON(c, &body) {
		return
	}
	body.RefreshToken = orCookie(c, body.RefreshToken, refreshCookie)
	body.AccessToken = orCookie(c, body.AccessToken, httpmw.AccessCookie)

	if err := h.svc.Logout(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}
	h.clearTokens(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) me(c *gin.Context) {
	user, ok := httpmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}

func (h *Handler) health(c *gin.Context) {
	rep := h.checker.Check(c.Request.Context())
	code, st := http.StatusOK, "ok"
	if !rep.Healthy {
		code, st = http.StatusServiceUnavailable, "degraded"
	}
	c.JSON(code, gin.H{
		"status":     st,
		"components": rep.Components,
		"time":       time.Now().Unix(),
	})
}

func (h *Handler) issueTokens(c *gin.Context, pair model.TokenPair) {
	// Access
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(httpmw.AccessCookie, pair.AccessToken, int(pair.AccessTTL.Seconds()), "/", h.cookieDomain, h.secure, true)

	// Refresh
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, pair.RefreshToken, int(pair.RefreshTTL.Seconds()), "/", h.cookieDomain, h.secure, true)

	c.JSON(http.StatusOK, gin.H{
		"expiresIn": int(pair.AccessTTL.Seconds()),
		"userId":    pair.UserId.String(),
	})
}

func (h *Handler) clearTokens(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(httpmw.AccessCookie, "", -1, "/", h.cookieDomain, h.secure, true)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, "", -1, "/", h.cookieDomain, h.secure, true)
}

// handleError never exposes which check failed.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsBadInput(err):
		badRequest(c)
	case authErrors.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication rejected"})
	case authErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

// bindOptionalJSON accepts an empty body so tokens can come from cookies.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c)
		return false
	}
	return true
}

func orCookie(c *gin.Context, v, name string) string {
	if v != "" {
		return v
	}
	cv, _ := c.Cookie(name)
	return cv
}

// headerInitData reads initData from "Authorization: tma <raw>" or
// X-Telegram-Init-Data.
func headerInitData(c *gin.Context) string {
	scheme, rest, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if ok && strings.EqualFold(scheme, tmaScheme) {
		return strings.TrimSpace(rest)
	}
	return c.GetHeader(initDataHeader)
}

func toUserDTO(u model.User) dto.UserDTO {
	return dto.UserDTO{
		ID:         u.ID.String(),
		TelegramID: u.TelegramID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}
