package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(migrations, "migrations/00001_init.sql")
	require.NoError(t, err)
	text := string(body)

	assert.True(t, strings.HasPrefix(text, "-- +goose Up"))
	assert.Contains(t, text, "-- +goose Down")
	assert.Contains(t, text, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, text, "CREATE TABLE IF NOT EXISTS student_data")
}
