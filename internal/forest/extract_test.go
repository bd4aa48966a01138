package forest

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExtractSingleHairpin(t *testing.T) {
	rec := Record{Name: "h", Sequence: "GGAAACC", Structure: "((...))"}
	res, err := Extract(rec, 134)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}
	if len(res.Catalog) != 1 {
		t.Fatalf("expected 1 motif, got %d", len(res.Catalog))
	}
	m := res.Catalog[0]
	if m.Name != "h_Motif_1" || m.Sequence != "GGAAACC" || m.Structure != "((...))" {
		t.Fatalf("unexpected motif: %+v", m)
	}
}

func TestExtractTwoHairpinsNumberedInOrder(t *testing.T) {
	rec := Record{
		Name:      "h",
		Sequence:  "GGAAACCAAGGAACC",
		Structure: "((...))..((..))",
	}
	res, err := Extract(rec, 134)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Catalog) != 2 {
		t.Fatalf("expected 2 motifs, got %d: %+v", len(res.Catalog), res.Catalog)
	}
	if res.Catalog[0].Name != "h_Motif_1" || res.Catalog[0].Structure != "((...))" {
		t.Fatalf("unexpected first motif: %+v", res.Catalog[0])
	}
	if res.Catalog[1].Name != "h_Motif_2" || res.Catalog[1].Structure != "((..))" {
		t.Fatalf("unexpected second motif: %+v", res.Catalog[1])
	}
	if res.Catalog[1].Sequence != "GGAACC" {
		t.Fatalf("second motif sequence misaligned: %q", res.Catalog[1].Sequence)
	}
}

func TestExtractAdjacentDeepHairpins(t *testing.T) {
	rec := Record{
		Name:      "h",
		Sequence:  "GGGAAACCCGGGAAACCC",
		Structure: "(((...)))(((...)))",
	}
	res, err := Extract(rec, 134)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Catalog) != 2 {
		t.Fatalf("expected 2 motifs, got %+v", res.Catalog)
	}
	for i, m := range res.Catalog {
		if m.Structure != "(((...)))" || m.Sequence != "GGGAAACCC" {
			t.Fatalf("motif %d should be one full hairpin, got %+v", i, m)
		}
	}
}

func TestExtractPacksOversizedRegion(t *testing.T) {
	rec := Record{
		Name:      "h",
		Sequence:  "GGAAGGAAACCAACC",
		Structure: "((..((...))..))",
	}
	res, err := Extract(rec, 12)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Catalog) != 1 {
		t.Fatalf("expected 1 motif, got %d", len(res.Catalog))
	}
	m := res.Catalog[0]
	if m.Structure != "((...))" || m.Sequence != "GGAAACC" {
		t.Fatalf("expected packed core, got %+v", m)
	}
}

func TestExtractDropsUnpackableRegion(t *testing.T) {
	rec := Record{Name: "h", Sequence: "GGGAAACCC", Structure: "(((...)))"}
	res, err := Extract(rec, 5)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Catalog) != 0 {
		t.Fatalf("expected no motifs, got %+v", res.Catalog)
	}
	if len(res.Warnings) == 0 || res.Warnings[0].Kind != WarnUnresolvable {
		t.Fatalf("expected an unresolvable warning, got %+v", res.Warnings)
	}
}

func TestExtractMultiTerminal(t *testing.T) {
	//                          0         1         2
	//                          0123456789012345678901
	rec := Record{
		Name:      "h",
		Sequence:  "GGAGGAAACCAGGAAACCAACC"[:21],
		Structure: "((.((...)).((...)).))",
	}
	res, err := Extract(rec, 134)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	var names []string
	for _, m := range res.Catalog {
		names = append(names, m.Name)
	}
	want := []string{"h_Motif_1", "h_Motif_2", "h_Multi_1_ComplexLevel_1"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected catalog names: %v", names)
	}
	multi := res.Catalog[2]
	if multi.Structure != rec.Structure || multi.Sequence != rec.Sequence {
		t.Fatalf("multi motif should cover the whole record, got %+v", multi)
	}
}

func TestExtractDeterministic(t *testing.T) {
	rec := Record{
		Name:      "h",
		Sequence:  strings.Repeat("GGAAACCAAGGAACC", 3),
		Structure: strings.Repeat("((...))..((..))", 3),
	}
	first, err := Extract(rec, 10)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Extract(rec, 10)
		if err != nil {
			t.Fatalf("Extract failed on repeat: %v", err)
		}
		if len(again.Catalog) != len(first.Catalog) {
			t.Fatalf("catalog size changed between runs")
		}
		for k := range again.Catalog {
			if again.Catalog[k] != first.Catalog[k] {
				t.Fatalf("catalog entry %d changed between runs", k)
			}
		}
	}
}

func TestExtractRejectsBadInput(t *testing.T) {
	good := Record{Name: "h", Sequence: "GGAAACC", Structure: "((...))"}
	if _, err := Extract(good, 0); !errors.Is(err, ErrMaxLength) {
		t.Fatalf("expected ErrMaxLength, got %v", err)
	}
	mismatched := Record{Name: "h", Sequence: "GGAAAC", Structure: "((...))"}
	if _, err := Extract(mismatched, 134); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	badAlphabet := Record{Name: "h", Sequence: "GGAAACC", Structure: "((.[.))"}
	if _, err := Extract(badAlphabet, 134); !errors.Is(err, ErrAlphabet) {
		t.Fatalf("expected ErrAlphabet, got %v", err)
	}
}

func TestExtractAllKeepsInputOrder(t *testing.T) {
	records := []Record{
		{Name: "a", Sequence: "GGAAACC", Structure: "((...))"},
		{Name: "b", Sequence: "GGAAACC", Structure: "((...))"},
		{Name: "c", Sequence: "GGAAACC", Structure: "((...))"},
	}
	res, recordErrs, err := ExtractAll(context.Background(), records, 134, 3)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(recordErrs) != 0 {
		t.Fatalf("unexpected record errors: %+v", recordErrs)
	}
	want := []string{"a_Motif_1", "b_Motif_1", "c_Motif_1"}
	if len(res.Catalog) != len(want) {
		t.Fatalf("expected %d motifs, got %d", len(want), len(res.Catalog))
	}
	for i, m := range res.Catalog {
		if m.Name != want[i] {
			t.Fatalf("catalog out of order: got %q at %d, want %q", m.Name, i, want[i])
		}
	}
}

func TestExtractAllIsolatesMalformedRecords(t *testing.T) {
	records := []Record{
		{Name: "good1", Sequence: "GGAAACC", Structure: "((...))"},
		{Name: "bad", Sequence: "GG", Structure: "((...))"},
		{Name: "good2", Sequence: "GGAAACC", Structure: "((...))"},
	}
	res, recordErrs, err := ExtractAll(context.Background(), records, 134, 0)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(recordErrs) != 1 || recordErrs[0].Record != "bad" {
		t.Fatalf("expected one record error for %q, got %+v", "bad", recordErrs)
	}
	if !errors.Is(recordErrs[0], ErrLengthMismatch) {
		t.Fatalf("record error should unwrap to ErrLengthMismatch, got %v", recordErrs[0].Err)
	}
	if len(res.Catalog) != 2 {
		t.Fatalf("good records should survive, got %+v", res.Catalog)
	}
}

func TestExtractAllRejectsBadMaxLength(t *testing.T) {
	_, _, err := ExtractAll(context.Background(), nil, -1, 0)
	if !errors.Is(err, ErrMaxLength) {
		t.Fatalf("expected ErrMaxLength, got %v", err)
	}
}
