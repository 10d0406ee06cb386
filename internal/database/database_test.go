package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"echohole/internal/config"
	"echohole/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Gorm Duplicated Key", gorm.ErrDuplicatedKey, true},
		{"Wrapped Gorm Duplicated Key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"Postgres Unique", &pgconn.PgError{Code: "23505"}, true},
		{"Postgres Other", &pgconn.PgError{Code: "23503"}, false},
		{"Sqlite Message", errors.New("UNIQUE constraint failed: likes.post_id, likes.ip_hash"), true},
		{"Other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestDialector(t *testing.T) {
	t.Parallel()

	d, err := Dialector(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "postgres", DBHost: "db", DBPort: "5432"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "board.db?_foreign_keys=on&_busy_timeout=5000", SQLiteDSN("board.db"))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=on&_busy_timeout=5000", SQLiteDSN("file::memory:?cache=shared"))
}

func TestMigrateAndTranslateDuplicate(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Ping(context.Background(), db))

	post := models.Post{Content: "hi", Status: models.PostStatusPublished, IPHash: "h"}
	require.NoError(t, db.Create(&post).Error)

	like := models.Like{PostID: post.ID, IPHash: "a"}
	require.NoError(t, db.Omit("Post").Create(&like).Error)

	err = db.Omit("Post").Create(&models.Like{PostID: post.ID, IPHash: "a"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}
