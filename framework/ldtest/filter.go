package ldtest

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests by full ID, as set by the -run and -skip flags.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	if len(r.MustMatch) != 0 && !r.MustMatch.MatchesID(id) {
		return false
	}
	return !r.MustNotMatch.MatchesID(id)
}

// IsDefined returns true if either list contains at least one pattern.
func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

// RegexList is a repeatable flag whose values are patterns for slash-joined test IDs.
type RegexList []*regexp.Regexp

func (r RegexList) String() string {
	return strings.Join(lo.Map(r, func(p *regexp.Regexp, _ int) string {
		return `"` + p.String() + `"`
	}), " or ")
}

func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex for test IDs %q: %w", value, err)
	}
	*r = append(*r, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r) != 0
}

// MatchesID returns true if any pattern matches the full ID, such as "health/user-service".
func (r RegexList) MatchesID(id TestID) bool {
	name := id.String()
	return lo.SomeBy(r, func(p *regexp.Regexp) bool {
		return p.MatchString(name)
	})
}

func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if !filters.IsDefined() {
		return
	}
	fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
	if filters.MustMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Fprintln(out)
}
