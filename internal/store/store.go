// Package store 封装用户、简历与定制版本的持久化。所有查询都按所属用户过滤。
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/database"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUser 插入新用户，用户名已存在时返回 Conflict。
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (database.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&database.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return database.User{}, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return database.User{}, apperror.Conflict("username already exists")
	}

	user := database.User{Username: username, PasswordHash: passwordHash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return database.User{}, apperror.Conflict("username already exists")
		}
		return database.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UserByUsername 按用户名查找用户。
// UserByUsername 按用户名查询，首尾空白与注册时一样被忽略。
func (s *Store) UserByUsername(ctx context.Context, username string) (database.User, error) {
	var user database.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.User{}, apperror.NotFound("user")
		}
		return database.User{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func (s *Store) CreateResume(ctx context.Context, resume *database.Resume) error {
	if err := s.db.WithContext(ctx).Create(resume).Error; err != nil {
		return fmt.Errorf("create resume: %w", err)
	}
	return nil
}

// LatestResume 返回用户 ID 最大的简历。
func (s *Store) LatestResume(ctx context.Context, userID uint) (database.Resume, error) {
	var resume database.Resume
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		First(&resume).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.Resume{}, apperror.NotFound("resume")
		}
		return database.Resume{}, fmt.Errorf("query latest resume: %w", err)
	}
	return resume, nil
}

func (s *Store) CreateCustomization(ctx context.Context, c *database.ResumeCustomization) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create customization: %w", err)
	}
	return nil
}

// LatestCustomization 返回用户 ID 最大的定制版本。
func (s *Store) LatestCustomization(ctx context.Context, userID uint) (database.ResumeCustomization, error) {
	var c database.ResumeCustomization
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.ResumeCustomization{}, apperror.NotFound("customization")
		}
		return database.ResumeCustomization{}, fmt.Errorf("query latest customization: %w", err)
	}
	return c, nil
}

// CustomizationByID 只返回属于该用户的定制版本，其他用户的 ID 视为不存在。
func (s *Store) CustomizationByID(ctx context.Context, userID, id uint) (database.ResumeCustomization, error) {
	var c database.ResumeCustomization
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.ResumeCustomization{}, apperror.NotFound("customization")
		}
		return database.ResumeCustomization{}, fmt.Errorf("query customization: %w", err)
	}
	return c, nil
}

// ListCustomizations 按创建顺序返回用户的全部定制版本。
func (s *Store) ListCustomizations(ctx context.Context, userID uint) ([]database.ResumeCustomization, error) {
	var list []database.ResumeCustomization
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list customizations: %w", err)
	}
	return list, nil
}
