package db

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// FieldKind is the FT schema type of an indexed hash field.
type FieldKind string

// Supported field kinds.
const (
	FieldTag     FieldKind = "TAG"
	FieldNumeric FieldKind = "NUMERIC"
	FieldVector  FieldKind = "VECTOR"
)

// HNSW describes a FLOAT32 vector field indexed with HNSW under cosine distance.
type HNSW struct {
	Dim         int
	M           int // max edges per node; 0 keeps the server default
	EFConstruct int // 0 keeps the server default
}

// Field is one indexed hash field.
type Field struct {
	Name   string
	Kind   FieldKind
	Vector HNSW // FieldVector only
}

// IndexDefinition is an FT index over the hashes under one key prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []Field
}

// Validate checks that the definition can be sent to FT.CREATE.
func (d *IndexDefinition) Validate() error {
	if !isIdentifier(d.Name) {
		return fmt.Errorf("invalid index name %q", d.Name)
	}
	if d.Prefix == "" {
		return errors.New("key prefix is required")
	}
	if len(d.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Kind {
		case FieldTag, FieldNumeric:
		case FieldVector:
			if f.Vector.Dim <= 0 {
				return fmt.Errorf("vector field %q needs a positive dimension", f.Name)
			}
		default:
			return fmt.Errorf("field %q has unknown kind %q", f.Name, f.Kind)
		}
	}
	return nil
}

// CreateArgs renders the FT.CREATE arguments that follow the command name.
func (d *IndexDefinition) CreateArgs() []string {
	args := []string{d.Name, "ON", "HASH", "PREFIX", "1", d.Prefix, "SCHEMA"}
	for i := range d.Fields {
		f := &d.Fields[i]
		args = append(args, f.Name, string(f.Kind))
		if f.Kind == FieldVector {
			args = append(args, hnswArgs(f.Vector)...)
		}
	}
	return args
}

func hnswArgs(v HNSW) []string {
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", "COSINE",
	}
	if v.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(v.M))
	}
	if v.EFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruct))
	}
	return append([]string{"HNSW", strconv.Itoa(len(attrs))}, attrs...)
}

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a definition for the hashes under prefix.
func NewIndex(name, prefix string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, Prefix: prefix}}
}

// Tag adds TAG fields.
func (b *IndexBuilder) Tag(names ...string) *IndexBuilder {
	for _, n := range names {
		b.def.Fields = append(b.def.Fields, Field{Name: n, Kind: FieldTag})
	}
	return b
}

// Numeric adds NUMERIC fields.
func (b *IndexBuilder) Numeric(names ...string) *IndexBuilder {
	for _, n := range names {
		b.def.Fields = append(b.def.Fields, Field{Name: n, Kind: FieldNumeric})
	}
	return b
}

// Vector adds an HNSW vector field.
func (b *IndexBuilder) Vector(name string, hnsw HNSW) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, Field{Name: name, Kind: FieldVector, Vector: hnsw})
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	def := b.def
	def.Fields = slices.Clone(b.def.Fields)
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// isIdentifier reports whether s is non-empty and made of [A-Za-z0-9_:-].
func isIdentifier(s string) bool {
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
