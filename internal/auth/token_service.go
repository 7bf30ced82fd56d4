package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/config"
)

// TokenService 负责签发与校验 RS256 访问令牌。
type TokenService struct {
	privateKey     *rsa.PrivateKey
	publicKey      *rsa.PublicKey
	accessTokenTTL time.Duration
}

// TokenClaims 表示 JWT 中的业务字段，便于中间件读取用户信息。
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewTokenService 解析 PEM 密钥并构造服务实例。
func NewTokenService(privateKeyPEM, publicKeyPEM []byte, accessTTL time.Duration) (*TokenService, error) {
	if len(privateKeyPEM) == 0 {
		return nil, errors.New("private key pem is required")
	}
	if len(publicKeyPEM) == 0 {
		return nil, errors.New("public key pem is required")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa private key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa public key: %w", err)
	}

	return &TokenService{privateKey: privateKey, publicKey: publicKey, accessTokenTTL: accessTTL}, nil
}

// NewEphemeralTokenService 生成进程内临时密钥，重启后旧令牌全部失效。
func NewEphemeralTokenService(accessTTL time.Duration) (*TokenService, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return &TokenService{privateKey: key, publicKey: &key.PublicKey, accessTokenTTL: accessTTL}, nil
}

// NewTokenServiceFromConfig 读取配置中的密钥文件；未配置路径时退回临时密钥。
func NewTokenServiceFromConfig(cfg config.AuthConfig) (*TokenService, bool, error) {
	if cfg.PrivateKeyPath == "" || cfg.PublicKeyPath == "" {
		svc, err := NewEphemeralTokenService(cfg.AccessTokenTTL)
		return svc, true, err
	}
	privatePEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, false, fmt.Errorf("read private key: %w", err)
	}
	publicPEM, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, false, fmt.Errorf("read public key: %w", err)
	}
	svc, err := NewTokenService(privatePEM, publicPEM, cfg.AccessTokenTTL)
	return svc, false, err
}

// IssueAccessToken 为用户签发访问令牌。
func (s *TokenService) IssueAccessToken(userID uint, username string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:    userID,
		Username:  username,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken 解析并验证 JWT。
func (s *TokenService) ValidateToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.TokenType != "access" {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// AccessTokenTTL 暴露访问令牌有效期。
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}
