// Package renderer turns engine types into markdown reports for the CLI.
package renderer

import (
	"fmt"
	"strings"
)

// table builds a markdown table with right-aligned numeric columns.
type table struct {
	b strings.Builder
}

func (t *table) header(cols ...string) {
	t.b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	t.b.WriteString("|" + strings.Join(seps, "|") + "|\n")
}

func (t *table) row(cells ...string) {
	t.b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func (t *table) String() string { return t.b.String() }

func title(b *strings.Builder, format string, args ...any) {
	fmt.Fprintf(b, "# "+format+"\n\n", args...)
}

func section(b *strings.Builder, format string, args ...any) {
	fmt.Fprintf(b, "\n## "+format+"\n\n", args...)
}
