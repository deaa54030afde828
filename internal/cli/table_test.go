package cli

import (
	"strings"
	"testing"
)

func renderLines(table *Table) []string {
	return strings.Split(strings.TrimSuffix(table.Render(), "\n"), "\n")
}

// TestTableBackendList tests the layout used by the backends listing.
func TestTableBackendList(t *testing.T) {
	table := NewTable([]string{"NAME", "KIND"})
	table.AddRow([]string{"cwal", "builtin"})
	table.AddRow([]string{"octree", "script", "ignored"})
	table.AddRow([]string{"random"})

	want := []string{
		"NAME    KIND   ",
		"------  -------",
		"cwal    builtin",
		"octree  script ",
		"random         ",
	}
	got := renderLines(table)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Render() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	if NewTable(nil).Render() != "" {
		t.Error("a table without headers should render nothing")
	}
}

// TestTableDisplayWidth tests that styled and wide cells are measured by
// display columns rather than bytes.
func TestTableDisplayWidth(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want []string
	}{
		{
			name: "ansi styling",
			rows: [][]string{{"\x1b[1mcwal\x1b[0m", "builtin"}, {"kmeans", "builtin"}},
			want: []string{"\x1b[1mcwal\x1b[0m    builtin", "kmeans    builtin"},
		},
		{
			name: "wide runes",
			rows: [][]string{{"色彩", "x"}, {"ab", "y"}},
			want: []string{"色彩  x", "ab    y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable([]string{"N", "K"})
			for _, row := range tt.rows {
				table.AddRow(row)
			}

			lines := renderLines(table)[2:]
			for i, want := range tt.want {
				if got := strings.TrimRight(lines[i], " "); got != want {
					t.Errorf("row %d = %q, want %q", i, got, want)
				}
			}
		})
	}
}

// TestPadRight tests padding to display width.
func TestPadRight(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"cwal", 6, "cwal  "},
		{"kmeans", 3, "kmeans"},
		{"\x1b[31mred\x1b[0m", 5, "\x1b[31mred\x1b[0m  "},
		{"色", 3, "色 "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.width); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}

// TestWrapText tests word wrapping within a column.
func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"short", 10, []string{"short"}},
		{"no limit at all", 0, []string{"no limit at all"}},
		{"median cut over the image", 10, []string{"median cut", "over the", "image"}},
		{"abcdefghijkl", 5, []string{"abcde", "fghij", "kl"}},
	}

	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

// TestTableWrappedColumn tests that a wrapped cell spans several lines.
func TestTableWrappedColumn(t *testing.T) {
	table := NewTable([]string{"NAME", "DESCRIPTION"})
	table.SetColumnMaxWidth(1, 12)
	table.AddRow([]string{"kmeans", "k-means clustering in Lab space"})

	lines := renderLines(table)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), table.Render())
	}
	if !strings.HasPrefix(lines[2], "kmeans") || strings.HasPrefix(lines[3], "kmeans") {
		t.Errorf("name should only appear on the first line of the row: %q", lines[2:])
	}
}
