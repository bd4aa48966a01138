package forest

import "fmt"

// WarningKind classifies recoverable anomalies surfaced during extraction.
type WarningKind int

const (
	// WarnUnresolvable: a corrected or packed region degenerated (empty, or
	// colliding with an already consumed span) and emitted no motif.
	WarnUnresolvable WarningKind = iota
	// WarnDepthCap: the multi-terminal pass hit MaxComplexDepth before the
	// structure ran out of OPEN markers.
	WarnDepthCap
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnresolvable:
		return "unresolvable-region"
	case WarnDepthCap:
		return "depth-cap"
	}
	return "unknown"
}

// Warning is a structured, non-fatal anomaly attached to a Result. Warnings
// never abort processing of the record that produced them, or of any other
// record in a batch.
type Warning struct {
	Record string
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Record, w.Kind, w.Detail)
}
