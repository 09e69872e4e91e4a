package textview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderAlignsColumns(t *testing.T) {
	tbl := NewTable(
		Column{Name: "ID", Width: 3, Align: AlignRight},
		Column{Name: "Description", Width: 20},
	).SetHeaderSeparator(false)
	tbl.AddRow("1", "buy milk")
	out := tbl.Render()
	assert.Contains(t, out, "buy milk")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestTruncateLongCell(t *testing.T) {
	tbl := NewTable(Column{Name: "Description", Width: 10})
	tbl.AddRow(strings.Repeat("x", 30))
	out := tbl.Render()
	assert.Contains(t, out, "...")
}
