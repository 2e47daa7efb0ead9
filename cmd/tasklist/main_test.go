package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FiltersAndCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, 3, "done", false))

	var out output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "Ticketing & Payments", out.Phase)
	assert.Equal(t, len(out.Tasks), out.Count)
	for _, task := range out.Tasks {
		assert.Equal(t, 3, task.Phase)
		assert.EqualValues(t, "done", task.Status)
	}
}

func TestRun_Pretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, 0, "", true))
	assert.Contains(t, buf.String(), "\n  \"count\"")
}

func TestRun_InvalidFlags(t *testing.T) {
	assert.Error(t, run(&bytes.Buffer{}, 8, "", false))
	assert.Error(t, run(&bytes.Buffer{}, 0, "blocked", false))
}
