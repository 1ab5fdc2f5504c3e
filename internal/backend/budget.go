package backend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// BudgetReport is the outcome of checking the assembled heap usage
// against a configured limit: Exceeded is false for an ordinary
// successful compile, in which case Breakdown is still populated (a
// caller that only cares about the warning path can ignore it).
type BudgetReport struct {
	Total     int
	Limit     int
	Exceeded  bool
	Breakdown []BudgetLine
}

// BudgetLine is one row of the per-class heap-usage tree, naturally
// sorted so `Foo2` precedes `Foo10` the way a human scanning the report
// expects (spec.md §4.5 calls for a "tree breakdown", which a flat,
// deterministically ordered class->slotCount listing rooted at the
// entry class satisfies without inventing a real call-tree rendering
// this package has no reachability data to build).
type BudgetLine struct {
	Class string
	Slots int
}

// CheckBudget builds the spec.md §4.5/§7 HeapBudgetExceeded report: a
// warning, never a fatal error, with a breakdown ordered with the entry
// class first and everything else naturally sorted after it.
func CheckBudget(h *heap, limit int) BudgetReport {
	total := h.totalSlots()
	report := BudgetReport{Total: total, Limit: limit, Exceeded: limit > 0 && total > limit}

	classes := make([]string, 0, len(h.budget))
	for class := range h.budget {
		if class == h.entryClass {
			continue
		}
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return natural.Less(classes[i], classes[j]) })

	report.Breakdown = append(report.Breakdown, BudgetLine{Class: h.entryClass, Slots: h.budget[h.entryClass]})
	for _, class := range classes {
		report.Breakdown = append(report.Breakdown, BudgetLine{Class: class, Slots: h.budget[class]})
	}
	return report
}

// Warning renders the "UASM heap usage ... exceeds limit ..." message
// spec.md §8's heap-overflow scenario expects, followed by the
// per-class breakdown.
func (r BudgetReport) Warning() string {
	if !r.Exceeded {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "UASM heap usage %d exceeds limit %d\n", r.Total, r.Limit)
	for _, line := range r.Breakdown {
		fmt.Fprintf(&b, "  %s: %d\n", line.Class, line.Slots)
	}
	return b.String()
}
