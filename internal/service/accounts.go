package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
)

const (
	maxUsernameLength = 64
	// bcrypt 只接受不超过 72 字节的口令。
	maxPasswordBytes = 72
)

// Register 创建账号，密码只以 bcrypt 哈希保存。
func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return apperror.Validation("username and password are required")
	}
	if len(username) > maxUsernameLength {
		return apperror.Validation(fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
	}
	if len(password) > maxPasswordBytes {
		return apperror.Validation(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return err
	}
	user, err := s.store.CreateUser(ctx, username, hash)
	if err != nil {
		return err
	}
	s.logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	return nil
}

// LoginResult 是登录成功后返回给客户端的信息。
type LoginResult struct {
	Username    string
	AccessToken string
	ExpiresIn   int64
}

// Login 校验密码。用户不存在与密码错误返回同一种错误。
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.store.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return LoginResult{}, apperror.InvalidCredentials()
		}
		return LoginResult{}, err
	}
	if !s.passwords.Verify(password, user.PasswordHash) {
		return LoginResult{}, apperror.InvalidCredentials()
	}

	result := LoginResult{Username: user.Username}
	if s.tokens != nil {
		token, err := s.tokens.IssueAccessToken(user.ID, user.Username)
		if err != nil {
			return LoginResult{}, err
		}
		result.AccessToken = token
		result.ExpiresIn = int64(s.tokens.AccessTokenTTL().Seconds())
	}
	return result, nil
}
