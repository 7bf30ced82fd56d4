package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/api/middleware"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/service"
)

// AuthHandler 处理注册与登录。
type AuthHandler struct {
	svc          *service.Service
	loginLimiter *hourlyLimiter
	verbose      bool
}

// NewAuthHandler 构造 AuthHandler。counter 为 nil 或 limit<=0 时不限速。
func NewAuthHandler(svc *service.Service, counter rateCounter, loginRateLimitPerHour int, verbose bool) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		loginLimiter: newHourlyLimiter(counter, "rate:login:", loginRateLimitPerHour),
		verbose:      verbose,
	}
}

type credentialsRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Register 创建新用户账号。
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		BadRequest(c, "username and password are required")
		return
	}
	if err := h.svc.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, err, h.verbose)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
}

type loginResponse struct {
	Message     string `json:"message"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// Login 校验口令并返回访问令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		BadRequest(c, "username and password are required")
		return
	}
	if h.loginRateLimited(c, req.Username) {
		Error(c, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}

	resp := loginResponse{Message: "Login successful", Username: result.Username}
	if result.AccessToken != "" {
		resp.AccessToken = result.AccessToken
		resp.TokenType = "Bearer"
		resp.ExpiresIn = result.ExpiresIn
	}
	c.JSON(http.StatusOK, resp)
}

// loginRateLimited 按 IP+用户名 计数，计数失败时放行。
func (h *AuthHandler) loginRateLimited(c *gin.Context, username string) bool {
	exceeded, err := h.loginLimiter.Exceeded(c.Request.Context(), c.ClientIP(), username)
	if err != nil {
		middleware.LoggerFromContext(c).Warn("login rate counter unavailable", slog.Any("error", err))
		return false
	}
	return exceeded
}

// claimedUsername 确定请求针对的用户。
// 带令牌时以令牌为准，显式传入的 username 必须与之一致。
func claimedUsername(c *gin.Context, supplied string) (string, error) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		if supplied == "" {
			return "", apperror.Validation("username is required")
		}
		return supplied, nil
	}
	if supplied != "" && supplied != claims.Username {
		return "", apperror.Forbidden("username does not match access token")
	}
	return claims.Username, nil
}
