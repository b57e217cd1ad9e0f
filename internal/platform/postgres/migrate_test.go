package postgres

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(embedMigrations, MigrationsDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_categories.sql",
		"00003_create_books.sql",
		"00004_create_reviews.sql",
	}, names)

	for _, name := range names {
		data, err := fs.ReadFile(embedMigrations, MigrationsDir+"/"+name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), "-- +goose Up"), name)
		assert.True(t, strings.Contains(string(data), "-- +goose Down"), name)
	}
}

func TestMigrationsDeclareMappedConstraints(t *testing.T) {
	var all strings.Builder
	entries, err := fs.ReadDir(embedMigrations, MigrationsDir)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := fs.ReadFile(embedMigrations, MigrationsDir+"/"+e.Name())
		require.NoError(t, err)
		all.Write(data)
	}

	for _, name := range []string{
		constraintUsernameUnique,
		constraintEmailUnique,
		constraintCategoryUnique,
		constraintReviewUnique,
		constraintBookCategoryFK,
		constraintReviewBookFK,
		constraintReviewUserFK,
	} {
		assert.Contains(t, all.String(), name)
	}
}

func TestMigrateUnknownCommand(t *testing.T) {
	err := Migrate(context.Background(), nil, "sideways", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
