package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return New(db)
}

func seedResumes(t *testing.T, s *Store, userID uint, ids ...uint) {
	t.Helper()
	for _, id := range ids {
		r := database.Resume{Model: gorm.Model{ID: id}, Filename: "cv.pdf", ExtractedData: datatypes.JSON(`{}`), UserID: userID}
		require.NoError(t, s.CreateResume(context.Background(), &r))
	}
}

func TestCreateUserConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "alice", "hash2")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	var count int64
	require.NoError(t, s.db.Model(&database.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserByUsernameNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLatestResumeIsMaxID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice, err := s.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "bob", "h")
	require.NoError(t, err)

	seedResumes(t, s, alice.ID, 3, 12, 7)
	seedResumes(t, s, bob.ID, 20)

	latest, err := s.LatestResume(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(12), latest.ID)

	_, err = s.LatestResume(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCustomizationLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice, err := s.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "bob", "h")
	require.NoError(t, err)
	seedResumes(t, s, alice.ID, 1)
	seedResumes(t, s, bob.ID, 2)

	for _, c := range []database.ResumeCustomization{
		{Model: gorm.Model{ID: 5}, JobPostText: "a", CustomizedData: datatypes.JSON(`{}`), ResumeID: 1, UserID: alice.ID},
		{Model: gorm.Model{ID: 9}, JobPostText: "b", CustomizedData: datatypes.JSON(`{}`), ResumeID: 1, UserID: alice.ID},
		{Model: gorm.Model{ID: 11}, JobPostText: "c", CustomizedData: datatypes.JSON(`{}`), ResumeID: 2, UserID: bob.ID},
	} {
		c := c
		require.NoError(t, s.CreateCustomization(ctx, &c))
	}

	latest, err := s.LatestCustomization(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(9), latest.ID)

	byID, err := s.CustomizationByID(ctx, alice.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, "a", byID.JobPostText)

	_, err = s.CustomizationByID(ctx, alice.ID, 11)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err := s.ListCustomizations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint(5), list[0].ID)
	assert.Equal(t, uint(9), list[1].ID)

	_, err = s.LatestCustomization(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
