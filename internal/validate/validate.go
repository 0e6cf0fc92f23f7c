// Package validate re-checks generated board sets against the guarantees
// the allocator provides: exact frequency conservation, no duplicates
// within a board, and no two identical boards.
package validate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/loteria-tools/tablero/internal/boardgen"
	"github.com/loteria-tools/tablero/internal/catalog"
)

// Check is the outcome of a single validation rule.
type Check struct {
	Name    string
	Passed  bool
	Details string
}

// Report collects the outcomes of every rule run against a board set.
type Report struct {
	Checks []Check
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Passed {
			return false
		}
	}
	return true
}

// Failures returns the checks that did not pass, in rule order.
func (r *Report) Failures() []Check {
	var failed []Check
	for _, check := range r.Checks {
		if !check.Passed {
			failed = append(failed, check)
		}
	}
	return failed
}

// Err returns nil when every check passed, otherwise a *ValidationError
// describing the first failure.
func (r *Report) Err() error {
	for _, check := range r.Checks {
		if !check.Passed {
			return &ValidationError{Check: check.Name, Details: check.Details}
		}
	}
	return nil
}

// ValidationError reports a board set that violates a generation guarantee.
type ValidationError struct {
	Check   string
	Details string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Check, e.Details)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BoardSet runs every validation rule against the set. It never mutates its
// inputs, so repeated runs over the same set produce identical reports.
func BoardSet(cat *catalog.Catalog, set *boardgen.BoardSet, params boardgen.Params) *Report {
	report := &Report{}
	report.add(checkBoardCount(set, params))
	report.add(checkBoardSize(set, params))
	report.add(checkFrequencies(cat, set))
	report.add(checkNoDuplicatesWithinBoards(set))
	report.add(checkNoIdenticalBoards(set))
	return report
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
}

func checkBoardCount(set *boardgen.BoardSet, params boardgen.Params) Check {
	c := Check{Name: "board count"}
	if len(set.Boards) != params.BoardCount {
		c.Details = fmt.Sprintf("set holds %d boards, want %d", len(set.Boards), params.BoardCount)
		return c
	}
	c.Passed = true
	c.Details = fmt.Sprintf("%d boards", len(set.Boards))
	return c
}

func checkBoardSize(set *boardgen.BoardSet, params boardgen.Params) Check {
	c := Check{Name: "board size"}
	var wrong []string
	for i, board := range set.Boards {
		if board.Size() != params.BoardSize {
			wrong = append(wrong, fmt.Sprintf("board %d has %d cells", i+1, board.Size()))
		}
	}
	if len(wrong) > 0 {
		c.Details = strings.Join(wrong, "; ")
		return c
	}
	c.Passed = true
	c.Details = fmt.Sprintf("%d cells per board", params.BoardSize)
	return c
}

// checkFrequencies verifies conservation: every catalogue item appears
// exactly its target number of times across the set, and nothing outside
// the catalogue appears at all.
func checkFrequencies(cat *catalog.Catalog, set *boardgen.BoardSet) Check {
	c := Check{Name: "item frequency"}
	counts := set.ItemCounts()
	targets := cat.TargetCounts()

	var wrong []string
	for _, item := range cat.Items() {
		if counts[item] != targets[item] {
			wrong = append(wrong, fmt.Sprintf("%s: expected %d, got %d", item, targets[item], counts[item]))
		}
	}

	var unknown []string
	for item := range counts {
		if _, ok := targets[item]; !ok {
			unknown = append(unknown, string(item))
		}
	}
	sort.Strings(unknown)
	for _, item := range unknown {
		wrong = append(wrong, fmt.Sprintf("%s: not in catalogue", item))
	}

	if len(wrong) > 0 {
		c.Details = strings.Join(wrong, "; ")
		return c
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	c.Passed = true
	c.Details = fmt.Sprintf("%d tokens across %d items match their targets", total, cat.Len())
	return c
}

func checkNoDuplicatesWithinBoards(set *boardgen.BoardSet) Check {
	c := Check{Name: "no duplicates within boards"}
	var wrong []string
	for i, board := range set.Boards {
		seen := make(map[catalog.Item]struct{}, board.Size())
		for _, item := range board {
			if _, dup := seen[item]; dup {
				wrong = append(wrong, fmt.Sprintf("board %d repeats %s", i+1, item))
			}
			seen[item] = struct{}{}
		}
	}
	if len(wrong) > 0 {
		c.Details = strings.Join(wrong, "; ")
		return c
	}
	c.Passed = true
	c.Details = "every board holds distinct items"
	return c
}

func checkNoIdenticalBoards(set *boardgen.BoardSet) Check {
	c := Check{Name: "no identical boards"}
	var wrong []string
	seen := make(map[string]int, len(set.Boards))
	for i, board := range set.Boards {
		key := board.Key()
		if j, dup := seen[key]; dup {
			wrong = append(wrong, fmt.Sprintf("boards %d and %d hold the same items", j+1, i+1))
			continue
		}
		seen[key] = i
	}
	if len(wrong) > 0 {
		c.Details = strings.Join(wrong, "; ")
		return c
	}
	c.Passed = true
	c.Details = "all boards are pairwise distinct"
	return c
}
