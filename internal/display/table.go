package display

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/quocvuong92/lake-cli/internal/constants"
)

// Outcome says how a full rendering ended. Pagination hands control to the
// user between pages, so "the user stopped reading" is a normal outcome of
// rendering, not an error.
type Outcome int

const (
	// Completed means every row was shown.
	Completed Outcome = iota
	// Cancelled means the user quit at a page break.
	Cancelled
)

// TableData is the renderable form of a tabular result.
type TableData struct {
	Title   string
	Headers []string
	Rows    [][]string

	// ActiveValue highlights the row whose KeyColumn cell matches it.
	ActiveValue string
	KeyColumn   int
}

// TableFromData extracts a TableData from a result payload following the
// handler convention (title/headers/rows plus optional active_value and
// key_column). Returns false when the payload is not tabular.
func TableFromData(data map[string]any) (*TableData, bool) {
	if data == nil {
		return nil, false
	}
	headers, ok1 := toStringSlice(data["headers"])
	rows, ok2 := toRows(data["rows"])
	if !ok1 || !ok2 {
		return nil, false
	}
	t := &TableData{Headers: headers, Rows: rows}
	t.Title, _ = data["title"].(string)
	t.ActiveValue, _ = data["active_value"].(string)
	switch v := data["key_column"].(type) {
	case int:
		t.KeyColumn = v
	case float64:
		t.KeyColumn = int(v)
	}
	return t, true
}

func toStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

func toRows(v any) ([][]string, bool) {
	switch rows := v.(type) {
	case [][]string:
		return rows, true
	case []any:
		out := make([][]string, 0, len(rows))
		for _, row := range rows {
			cells, ok := toStringSlice(row)
			if !ok {
				return nil, false
			}
			out = append(out, cells)
		}
		return out, true
	}
	return nil, false
}

// Renderer draws to a terminal. Output, input and page size are injectable
// so tests can drive pagination.
type Renderer struct {
	out      io.Writer
	in       *bufio.Reader
	pageSize int
}

// NewRenderer builds a stdout/stdin renderer with the default page size.
func NewRenderer() *Renderer {
	return &Renderer{
		out:      os.Stdout,
		in:       bufio.NewReader(os.Stdin),
		pageSize: constants.DefaultPageSize,
	}
}

// NewRendererWith builds a renderer over explicit streams; used by tests.
func NewRendererWith(out io.Writer, in io.Reader, pageSize int) *Renderer {
	return &Renderer{out: out, in: bufio.NewReader(in), pageSize: pageSize}
}

// columnWidths sizes each column to its widest cell, headers included.
func columnWidths(t *TableData) []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	var sb strings.Builder
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString("  ")
		}
		if i < len(widths) {
			fmt.Fprintf(&sb, "%-*s", widths[i], cell)
		} else {
			sb.WriteString(cell)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// RenderTable draws the full table, pausing every pageSize rows. The active
// row is marked and highlighted.
func (r *Renderer) RenderTable(t *TableData) Outcome {
	widths := columnWidths(t)

	if t.Title != "" {
		fmt.Fprintln(r.out, titleStyle.Render(t.Title))
	}
	if len(t.Headers) > 0 {
		fmt.Fprintln(r.out, headerStyle.Render("  "+formatRow(t.Headers, widths)))
	}

	shown := 0
	for _, row := range t.Rows {
		if r.pageSize > 0 && shown > 0 && shown%r.pageSize == 0 {
			if r.pageBreak(shown, len(t.Rows)) == Cancelled {
				return Cancelled
			}
		}
		line := formatRow(row, widths)
		if len(row) > t.KeyColumn && IsActiveRow(row[t.KeyColumn], t.ActiveValue) {
			fmt.Fprintln(r.out, activeStyle.Render("* "+line))
		} else {
			fmt.Fprintln(r.out, "  "+line)
		}
		shown++
	}
	return Completed
}

// pageBreak prompts between pages. Enter continues; q stops.
func (r *Renderer) pageBreak(shown, total int) Outcome {
	fmt.Fprint(r.out, dimStyle.Render(fmt.Sprintf("-- %d/%d, Enter for more, q to stop -- ", shown, total)))
	line, err := r.in.ReadString('\n')
	if err != nil {
		// EOF on stdin means nobody is there to page; stop cleanly.
		return Cancelled
	}
	if strings.EqualFold(strings.TrimSpace(line), "q") {
		return Cancelled
	}
	return Completed
}

// Println writes a plain line.
func (r *Renderer) Println(s string) {
	fmt.Fprintln(r.out, s)
}

// Success writes a highlighted confirmation line.
func (r *Renderer) Success(s string) {
	fmt.Fprintln(r.out, okStyle.Render(s))
}

// Error writes a highlighted error line.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.out, errorStyle.Render("Error: "+err.Error()))
}
