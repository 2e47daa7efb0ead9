package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFiles(t *testing.T) {
	files, err := SchemaFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_init.sql", files[0])

	sql, err := schemaFS.ReadFile("schema/" + files[0])
	require.NoError(t, err)
	assert.Contains(t, string(sql), "event_comments")
	assert.Contains(t, string(sql), "whatsapp_message_log")
	assert.True(t, strings.HasPrefix(string(sql), "-- +goose Up"))
	assert.Contains(t, string(sql), "-- +goose Down")
}
