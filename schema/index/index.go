// Package index provides per-field markers that drive the graph-store
// index and constraint plan.
//
//	field.String("username").Annotations(index.Unique())
//	field.String("nickname").Annotations(index.OmitFromFullText())
//
// Markers never change the shape of the derived schemas.
package index

import "github.com/syssam/velograph/schema"

// Kind of an index marker.
type Kind string

// Marker kinds.
const (
	// KindIndex requests a property index on the field.
	KindIndex Kind = "index"
	// KindUnique requests a uniqueness constraint on the field.
	KindUnique Kind = "unique"
	// KindText requests a text index on the field.
	KindText Kind = "text"
	// KindFullText requests that the field is part of the model's full-text index.
	KindFullText Kind = "fulltext"
	// KindOmitFullText excludes a string field from the model's full-text index.
	KindOmitFullText Kind = "omit_fulltext"
)

// Marker is a field annotation holding one index marker kind.
type Marker struct {
	Kind Kind
}

// Name implements the schema.Annotation interface. Each kind has its own
// name so that several markers can be attached to the same field.
func (m Marker) Name() string {
	return "index." + string(m.Kind)
}

// Index marks the field for a property index.
func Index() Marker { return Marker{Kind: KindIndex} }

// Unique marks the field for a uniqueness constraint.
func Unique() Marker { return Marker{Kind: KindUnique} }

// Text marks the field for a text index.
func Text() Marker { return Marker{Kind: KindText} }

// FullText marks the field for inclusion in the full-text index.
func FullText() Marker { return Marker{Kind: KindFullText} }

// OmitFromFullText excludes the field from the full-text index.
func OmitFromFullText() Marker { return Marker{Kind: KindOmitFullText} }

// ParseKind returns the marker kind for its textual form.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindIndex, KindUnique, KindText, KindFullText, KindOmitFullText:
		return k, true
	}
	return "", false
}

// Has reports whether the annotations contain a marker of the given kind.
func Has(annotations []schema.Annotation, kind Kind) bool {
	for _, an := range annotations {
		switch m := an.(type) {
		case Marker:
			if m.Kind == kind {
				return true
			}
		case *Marker:
			if m != nil && m.Kind == kind {
				return true
			}
		}
	}
	return false
}

var _ schema.Annotation = Marker{}
