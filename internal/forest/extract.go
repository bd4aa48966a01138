package forest

import (
	"fmt"
	"strings"
)

// MaxComplexDepth bounds the multi-terminal recursion. Well-formed input
// converges long before this; hitting the cap is reported as a Warning, not
// an error, and whatever was accumulated is returned.
const MaxComplexDepth = 50

// Result is the outcome of decomposing one Record (or, after folding, a
// whole batch): the ordered motif catalog plus any structured warnings.
type Result struct {
	Catalog  Catalog
	Warnings []Warning
}

func (r *Result) warn(record string, kind WarningKind, detail string) {
	r.Warnings = append(r.Warnings, Warning{Record: record, Kind: kind, Detail: detail})
}

// Merge folds other into r, preserving insertion order.
func (r *Result) Merge(other Result) {
	r.Catalog = append(r.Catalog, other.Catalog...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Extract decomposes one record into its terminal-loop motifs at every
// nesting depth. It is a pure function of (rec, maxLength): the record is
// never mutated and repeated calls return identical results.
//
// The single-terminal pass emits the corrected hairpin-tip regions in
// discovery order as "<name>_Motif_<k>". The multi-terminal pass then masks
// those regions to unpaired characters and re-scans the residue level by
// level, emitting "<name>_Multi_<k>_ComplexLevel_<depth>" motifs until no
// OPEN marker remains or MaxComplexDepth is reached.
func Extract(rec Record, maxLength int) (Result, error) {
	if maxLength <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrMaxLength, maxLength)
	}
	if err := rec.Validate(); err != nil {
		return Result{}, err
	}

	var res Result
	structure := rec.Structure

	// Single-terminal pass.
	regions := balancedRegions(structure)
	consumed := make([]span, 0, len(regions))
	count := 1
	for _, o := range regions {
		sp := pack(structure, o.region, maxLength)
		switch {
		case sp.empty():
			res.warn(rec.Name, WarnUnresolvable, "region packed away to nothing")
		case overlapsAny(sp, consumed):
			res.warn(rec.Name, WarnUnresolvable,
				fmt.Sprintf("region [%d,%d) overlaps an already consumed span", sp.start, sp.end))
		case sp.length() <= maxLength:
			res.Catalog = append(res.Catalog, Motif{
				Name:      fmt.Sprintf("%s_Motif_%d", rec.Name, count),
				Structure: structure[sp.start:sp.end],
				Sequence:  rec.Sequence[sp.start:sp.end],
			})
			count++
		}
		// The full unpacked region is consumed whether or not a motif was
		// emitted, so this level never reconsiders it.
		consumed = append(consumed, o.region)
	}

	// Multi-terminal pass: masking discovered regions to unpaired characters
	// exposes the next nesting level to the scanner while keeping every
	// offset aligned with the original structure and sequence.
	masked := maskRegions(structure, regions)
	depth := 0
	for strings.IndexByte(masked, Open) >= 0 {
		level := balancedRegions(masked)
		for k, o := range level {
			sp := pack(masked, o.region, maxLength)
			if sp.empty() {
				res.warn(rec.Name, WarnUnresolvable, "multi-terminal region packed away to nothing")
				continue
			}
			if sp.length() <= maxLength {
				res.Catalog = append(res.Catalog, Motif{
					Name:      fmt.Sprintf("%s_Multi_%d_ComplexLevel_%d", rec.Name, k+1, depth+1),
					Structure: structure[sp.start:sp.end],
					Sequence:  rec.Sequence[sp.start:sp.end],
				})
			}
		}
		masked = maskRegions(masked, level)
		depth++
		if depth > MaxComplexDepth {
			res.warn(rec.Name, WarnDepthCap,
				fmt.Sprintf("multi-terminal extraction stopped at depth %d with open markers remaining", MaxComplexDepth))
			break
		}
	}

	return res, nil
}

// maskRegions overwrites every region span with Unpaired characters,
// preserving length so all downstream offsets stay valid.
func maskRegions(text string, regions []outcome) string {
	if len(regions) == 0 {
		return text
	}
	b := []byte(text)
	for _, o := range regions {
		for i := o.region.start; i < o.region.end; i++ {
			b[i] = Unpaired
		}
	}
	return string(b)
}
