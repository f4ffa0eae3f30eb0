package trait

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"paratest/event"
)

// Parameter is one argument slot of a parameterized test function; Values
// holds the (already materialized) collection discovery supplied for that
// slot. The cartesian product across all Parameters is computed lazily by
// Cases, per spec.md §3.
type Parameter struct {
	Name   string
	Values []any
}

// TestDescriptor is the immutable value describing a single test function
// or suite, per spec.md §3. Test discovery builds these; this module only
// consumes them.
type TestDescriptor struct {
	ID             string
	Name           string
	IsSuite        bool
	SourceLocation event.SourceLocation
	Traits         []Trait
	Parameters     []Parameter
	// Body is absent (nil) for suites.
	Body func(ctx context.Context, tc *TestCase) error
	// Children holds nested Test Descriptors for a suite; empty for test
	// functions. Discovery is responsible for populating the tree.
	Children []*TestDescriptor
}

// TestCase is one invocation of a test function, per spec.md §3. For a
// non-parameterized test there is exactly one unnamed TestCase.
type TestCase struct {
	ID        string
	Parent    *TestDescriptor
	Arguments []any
}

// Cases lazily yields the cartesian product of test.Parameters, one
// TestCase per argument tuple, without materializing the whole product up
// front — spec.md §3 calls this out explicitly ("the (lazy) cartesian
// product of argument collections").
func Cases(test *TestDescriptor) iter.Seq[*TestCase] {
	return func(yield func(*TestCase) bool) {
		if len(test.Parameters) == 0 {
			yield(&TestCase{ID: test.ID, Parent: test})
			return
		}
		for _, p := range test.Parameters {
			if len(p.Values) == 0 {
				return
			}
		}

		indices := make([]int, len(test.Parameters))
		for {
			args := make([]any, len(test.Parameters))
			idParts := make([]string, len(test.Parameters))
			for i, p := range test.Parameters {
				args[i] = p.Values[indices[i]]
				idParts[i] = fmt.Sprintf("%v", args[i])
			}
			tc := &TestCase{
				ID:        test.ID + "/" + strings.Join(idParts, ","),
				Parent:    test,
				Arguments: args,
			}
			if !yield(tc) {
				return
			}

			pos := len(indices) - 1
			for pos >= 0 {
				indices[pos]++
				if indices[pos] < len(test.Parameters[pos].Values) {
					break
				}
				indices[pos] = 0
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}
