package forest

// Motif is the durable output unit: a named, balanced sub-structure and the
// nucleotide sequence it spans. Structure and Sequence always have equal
// length; Sequence never exceeds the configured maximum. For assembled DNA
// entries produced downstream the Structure field may be empty.
type Motif struct {
	Name      string `json:"name"`
	Structure string `json:"structure"`
	Sequence  string `json:"sequence"`
}

// Catalog is an insertion-ordered collection of motifs. Names are unique
// within one extraction run; order is stable for reproducibility.
type Catalog []Motif

// Get returns the motif with the given name.
func (c Catalog) Get(name string) (Motif, bool) {
	for _, m := range c {
		if m.Name == name {
			return m, true
		}
	}
	return Motif{}, false
}

// Names returns the motif names in insertion order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, m := range c {
		names[i] = m.Name
	}
	return names
}
