// Package merge fuses compatible decade plans that share product,
// machines, and month into single merged plans.
package merge

import (
	"sort"
	"strings"

	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/plan"
	"github.com/planfab/aps-engine/internal/domain/shared"
)

// Merger is the second pipeline stage. Two plans merge iff they share
// the planned-start month, article, maker code, and feeder code, and the
// article is not a special brand. Special brands never merge; plans
// spanning a month boundary never merge.
type Merger struct {
	specialBrands map[string]struct{}
	clock         shared.Clock
}

// NewMerger creates a merger. specialBrands lists article codes excluded
// from merging.
func NewMerger(specialBrands []string, clock shared.Clock) *Merger {
	brands := make(map[string]struct{}, len(specialBrands))
	for _, b := range specialBrands {
		brands[strings.TrimSpace(b)] = struct{}{}
	}
	return &Merger{specialBrands: brands, clock: clock}
}

// Run groups the preprocessed plans into equivalence classes and fuses
// classes of size > 1. Output ordering is unspecified; downstream stages
// must not depend on it. The merged-number sequence resets per run.
func (m *Merger) Run(plans []plan.PreprocessedPlan) []plan.MergedPlan {
	if len(plans) == 0 {
		return nil
	}

	uf := newUnionFind(len(plans))
	for i := 0; i < len(plans); i++ {
		for j := i + 1; j < len(plans); j++ {
			if m.equivalent(plans[i], plans[j]) {
				uf.union(i, j)
			}
		}
	}

	classes := make(map[int][]plan.PreprocessedPlan)
	roots := make([]int, 0)
	for i := range plans {
		root := uf.find(i)
		if _, seen := classes[root]; !seen {
			roots = append(roots, root)
		}
		classes[root] = append(classes[root], plans[i])
	}
	// Stable class order so the per-run merged-number sequence is
	// reproducible for identical input
	sort.Ints(roots)

	merged := make([]plan.MergedPlan, 0, len(roots))
	seq := 0
	for _, root := range roots {
		class := classes[root]
		if len(class) == 1 {
			merged = append(merged, passthrough(class[0]))
			continue
		}
		seq++
		merged = append(merged, m.fuse(class, seq))
	}
	return merged
}

// equivalent implements the merge equivalence relation
func (m *Merger) equivalent(a, b plan.PreprocessedPlan) bool {
	if a.PlannedStart.Year() != b.PlannedStart.Year() || a.PlannedStart.Month() != b.PlannedStart.Month() {
		return false
	}
	articleA := strings.TrimSpace(a.ArticleNr)
	if articleA != strings.TrimSpace(b.ArticleNr) {
		return false
	}
	if strings.TrimSpace(a.MakerCode) != strings.TrimSpace(b.MakerCode) {
		return false
	}
	if strings.TrimSpace(a.FeederCode) != strings.TrimSpace(b.FeederCode) {
		return false
	}
	if _, special := m.specialBrands[articleA]; special {
		return false
	}
	return true
}

// fuse combines an equivalence class of size > 1 into one merged plan
func (m *Merger) fuse(class []plan.PreprocessedPlan, seq int) plan.MergedPlan {
	sort.Slice(class, func(i, j int) bool { return class[i].PlannedStart.Before(class[j].PlannedStart) })

	first := class[0]
	fused := plan.MergedPlan{
		WorkOrderNr:   order.FormatMergedNr(m.clock.Now(), seq),
		ArticleNr:     first.ArticleNr,
		ProductCode:   first.ProductCode,
		PackageType:   first.PackageType,
		Specification: first.Specification,
		MakerCode:     first.MakerCode,
		FeederCode:    first.FeederCode,
		PlannedStart:  first.PlannedStart,
		PlannedEnd:    first.PlannedEnd,
		IsMerged:      true,
		MergedCount:   len(class),
	}
	for _, p := range class {
		fused.QuantityTotal += p.QuantityTotal
		fused.FinalQuantity += p.FinalQuantity
		fused.MergedFrom = append(fused.MergedFrom, p.WorkOrderNr)
		if p.PlannedStart.Before(fused.PlannedStart) {
			fused.PlannedStart = p.PlannedStart
		}
		if p.PlannedEnd.After(fused.PlannedEnd) {
			fused.PlannedEnd = p.PlannedEnd
		}
	}
	return fused
}

// passthrough wraps a singleton class unchanged
func passthrough(p plan.PreprocessedPlan) plan.MergedPlan {
	return plan.MergedPlan{
		WorkOrderNr:   p.WorkOrderNr,
		ArticleNr:     p.ArticleNr,
		ProductCode:   p.ProductCode,
		PackageType:   p.PackageType,
		Specification: p.Specification,
		QuantityTotal: p.QuantityTotal,
		FinalQuantity: p.FinalQuantity,
		MakerCode:     p.MakerCode,
		FeederCode:    p.FeederCode,
		PlannedStart:  p.PlannedStart,
		PlannedEnd:    p.PlannedEnd,
		IsMerged:      false,
		MergedCount:   1,
	}
}

// unionFind is a plain union-find with path compression. The pairwise
// O(n²) grouping is acceptable for decade-plan batches (n ≤ a few
// thousand rows).
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri != rj {
		if ri < rj {
			uf.parent[rj] = ri
		} else {
			uf.parent[ri] = rj
		}
	}
}
