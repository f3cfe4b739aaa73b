package docs

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Every topic must parse as markdown and open with a level-1 heading, since
// the CLI renders them straight to the terminal.
func TestTopicsAreWellFormed(t *testing.T) {
	names, err := All()
	if err != nil {
		t.Fatalf("listing topics: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no topics embedded")
	}

	md := goldmark.New()
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			content, err := Get(name)
			if err != nil {
				t.Fatalf("loading topic: %v", err)
			}
			source := []byte(content)
			root := md.Parser().Parse(text.NewReader(source))

			first := root.FirstChild()
			h, ok := first.(*ast.Heading)
			if !ok || h.Level != 1 {
				t.Errorf("topic %s must start with a # heading", name)
			}
		})
	}
}

func TestGetUnknownTopic(t *testing.T) {
	if _, err := Get("no-such-topic"); err == nil {
		t.Fatal("expected an error for an unknown topic")
	}
}

func TestAllContainsGettingStarted(t *testing.T) {
	names, err := All()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(strings.Join(names, " "), "getting-started") {
		t.Errorf("topics %v should include getting-started", names)
	}
}
