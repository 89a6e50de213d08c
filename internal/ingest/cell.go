package ingest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cell is a raw time cell. Numbers and strings keep their source text; null
// decodes to an empty cell.
type Cell string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Cell) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: time must be a scalar", ErrDocument, n.Line)
	}
	if n.Tag == "!!null" {
		*c = ""
		return nil
	}
	*c = Cell(n.Value)
	return nil
}

// Blank reports whether the cell holds no time.
func (c Cell) Blank() bool {
	return strings.TrimSpace(string(c)) == ""
}
