package db

import (
	"fmt"
	"strconv"
)

// FieldKind is the FT schema type of a hash field.
type FieldKind int

// Field kinds supported by chunk indexes.
const (
	FieldText FieldKind = iota
	FieldTag
	FieldNumeric
	FieldVector
)

// String returns the FT.CREATE keyword.
func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "TEXT"
	case FieldTag:
		return "TAG"
	case FieldNumeric:
		return "NUMERIC"
	case FieldVector:
		return "VECTOR"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// IndexField is one schema entry. Dim, M and EFConstruct apply to vector
// fields, which are always FLOAT32 HNSW with cosine distance.
type IndexField struct {
	Name        string
	Kind        FieldKind
	Dim         int
	M           int
	EFConstruct int
}

// IndexDefinition describes an FT index over hashes under Prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a definition for index name over keys starting with prefix.
func NewIndex(name, prefix string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, Prefix: prefix}}
}

// Text adds a full-text field.
func (b *IndexBuilder) Text(name string) *IndexBuilder { return b.add(IndexField{Name: name, Kind: FieldText}) }

// Tag adds an exact-match field.
func (b *IndexBuilder) Tag(name string) *IndexBuilder { return b.add(IndexField{Name: name, Kind: FieldTag}) }

// Numeric adds a range-queryable field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldNumeric})
}

// Vector adds the embedding field. Zero m or efConstruct keeps the server default.
func (b *IndexBuilder) Vector(name string, dim, m, efConstruct int) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldVector, Dim: dim, M: m, EFConstruct: efConstruct})
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates the definition and returns a copy the builder no longer touches.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Fields = append([]IndexField(nil), b.def.Fields...)
	return &def, nil
}

// Validate reports the first problem in the definition.
func (d *IndexDefinition) Validate() error {
	if !IsValidIdentifier(d.Name) {
		return fmt.Errorf("%w: index name %q", ErrInvalidDefinition, d.Name)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("%w: %s has no fields", ErrInvalidDefinition, d.Name)
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: unnamed field in %s", ErrInvalidDefinition, d.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: field %s declared twice", ErrInvalidDefinition, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Kind == FieldVector && f.Dim <= 0 {
			return fmt.Errorf("%w: vector %s needs a positive dimension", ErrInvalidDefinition, f.Name)
		}
	}
	return nil
}

// IsValidIdentifier reports whether s is non-empty and made of letters,
// digits, '_', ':' and '-'.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}
