package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_ReferencesAreValid(t *testing.T) {
	ids := map[string]bool{}
	for _, task := range All() {
		assert.False(t, ids[task.ID], "duplicate id %s", task.ID)
		ids[task.ID] = true
		assert.Contains(t, Phases, task.Phase)
	}
	for _, task := range All() {
		for _, dep := range task.DependsOn {
			assert.True(t, ids[dep], "%s depends on unknown %s", task.ID, dep)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	list := All()
	list[0].Title = "changed"
	assert.NotEqual(t, "changed", All()[0].Title)
}

func TestFilter(t *testing.T) {
	list := All()

	for _, task := range Filter(list, 3, "") {
		assert.Equal(t, 3, task.Phase)
	}
	for _, task := range Filter(list, 0, StatusTodo) {
		assert.Equal(t, StatusTodo, task.Status)
	}
	assert.Len(t, Filter(list, 0, ""), len(list))
	assert.Empty(t, Filter(list, 9, ""))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("In-Progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, st)

	_, err = ParseStatus("blocked")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	counts := Summary([]Task{{Status: StatusDone}, {Status: StatusDone}, {Status: StatusTodo}})
	assert.Equal(t, map[Status]int{StatusTodo: 1, StatusInProgress: 0, StatusDone: 2}, counts)
}
