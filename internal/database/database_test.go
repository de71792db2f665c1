package database

import (
	"testing"

	"porchlight/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_Migrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestMigratedSchema_RoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	slug := "intro"
	comment := models.Comment{
		PostSlug: &slug,
		UserID:   "usr_1",
		UserName: "Ada",
		Content:  "hello",
	}
	require.NoError(t, db.Create(&comment).Error)
	assert.NotZero(t, comment.ID)
	assert.NotZero(t, comment.CreatedAt, "autoCreateTime should stamp ms-epoch timestamps")

	var loaded models.Comment
	require.NoError(t, db.First(&loaded, comment.ID).Error)
	require.NotNil(t, loaded.PostSlug)
	assert.Equal(t, "intro", *loaded.PostSlug)
	assert.Equal(t, 0, loaded.ReplyCount)
}
