package constraints

import "fmt"

// Policy decides what happens to a tabular value when a cell violates the
// constraints of its column type.
type Policy string

const (
	// DropRow discards the whole row.
	DropRow Policy = "drop_row"
	// NullCell keeps the row and stores null in the offending cell.
	NullCell Policy = "null_cell"
	// FailTable fails the block.
	FailTable Policy = "fail_table"
)

// Policies lists the accepted policy names.
func Policies() []string {
	return []string{string(DropRow), string(NullCell), string(FailTable)}
}

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case DropRow, NullCell, FailTable:
		return p, nil
	}
	return "", fmt.Errorf("unknown constraint policy %q, expected one of %v", s, Policies())
}
