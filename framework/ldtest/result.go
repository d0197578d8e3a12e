package ldtest

import "strings"

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool

	// Group is true if the test ran subtests of its own. A group only counts as a test if it
	// failed or was skipped.
	Group bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns the number of tests that passed, failed, and were skipped. Groups that passed
// are left out, since their subtests are counted instead.
func (r Results) Counts() (passed, failed, skipped int) {
	for _, t := range r.Tests {
		switch {
		case t.Group && !t.Skipped && len(t.Errors) == 0:
		case t.Skipped:
			skipped++
		case len(t.Errors) > 0:
			failed++
		default:
			passed++
		}
	}
	return
}

type TestID struct {
	Path []string
}

// Plus returns a new TestID with name appended to the path. It never shares the underlying
// array with the receiver.
func (t TestID) Plus(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	path = append(path, t.Path...)
	return TestID{Path: append(path, name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}
