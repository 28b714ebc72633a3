package resultset

import (
	"testing"

	"figimapper/internal/figi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ErrorRowIsEmptyAndInPosition(t *testing.T) {
	outcomes := map[int]figi.ChunkResult{
		0: {Index: 0, Input: jobs("A", "B", "C"), Output: []figi.JobResult{
			match("a"),
			{Warning: "No identifier found."},
			match("c"),
		}},
	}

	table := Flatten(outcomes).Table()

	assert.Equal(t, figi.Columns, table.Columns)
	assert.Equal(t, []string{"A", "B", "C"}, table.Index)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []bool{false, true, false}, table.Missing)

	for _, row := range table.Rows {
		assert.Len(t, row, len(figi.Columns))
	}

	assert.Equal(t, "a", table.Rows[0][0])
	assert.Equal(t, "Ta", table.Rows[0][2])
	assert.Equal(t, make([]string, len(figi.Columns)), table.Rows[1])
	assert.Equal(t, "c", table.Rows[2][0])
}

func TestTable_FailedChunk(t *testing.T) {
	outcomes := map[int]figi.ChunkResult{
		0: {Index: 0, Input: jobs("A"), Output: []figi.JobResult{match("a")}},
		1: {Index: 1, Input: jobs("B"), Err: "timeout error: request timed out"},
		2: {Index: 2, Input: jobs("C"), Output: []figi.JobResult{match("c")}},
	}

	table := Flatten(outcomes).Table()

	assert.Equal(t, []string{"A", "B", "C"}, table.Index)
	assert.Equal(t, []bool{false, true, false}, table.Missing)
}

func TestTable_ColumnsAreACopy(t *testing.T) {
	table := Flatten(nil).Table()
	table.Columns[0] = "mutated"

	assert.Equal(t, "figi", figi.Columns[0])
}
