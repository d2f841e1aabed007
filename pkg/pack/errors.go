package pack

import (
	"fmt"
	"strings"
)

// CircularDependencyError reports that resolution could not order every
// asset. Unresolved holds, in declaration order, the names that participate
// in (or depend on) at least one cycle.
type CircularDependencyError struct {
	Unresolved []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency among assets: %s", strings.Join(e.Unresolved, ", "))
}

// ParseError reports that generated text did not honor the output contract:
// the number of fenced blocks did not match the expected generation order.
type ParseError struct {
	Expected int
	Actual   int
	Order    []string
}

func (e *ParseError) Error() string {
	if len(e.Order) == 0 {
		return fmt.Sprintf("output contract violation: expected %d fenced block(s), found %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("output contract violation: expected %d fenced block(s) for order [%s], found %d",
		e.Expected, strings.Join(e.Order, ", "), e.Actual)
}
