package types

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// PropertyKind tags how a PropertyValue is applied to its target.
type PropertyKind int

const (
	// LiteralProperty overwrites the target property.
	LiteralProperty PropertyKind = iota
	// SequenceProperty is appended to the target's existing sequence.
	SequenceProperty
	// MappingProperty is shallow-merged into the target's existing object.
	MappingProperty
)

func (k PropertyKind) String() string {
	switch k {
	case SequenceProperty:
		return "sequence"
	case MappingProperty:
		return "mapping"
	default:
		return "literal"
	}
}

func parsePropertyKind(s string) (PropertyKind, error) {
	switch s {
	case "literal":
		return LiteralProperty, nil
	case "sequence":
		return SequenceProperty, nil
	case "mapping":
		return MappingProperty, nil
	default:
		return LiteralProperty, fmt.Errorf("unknown property kind %q", s)
	}
}

// PropertyValue is a value destined for a DOM property. Exactly one of
// Literal, Sequence or Mapping is meaningful, selected by Kind.
type PropertyValue struct {
	Kind     PropertyKind
	Literal  any
	Sequence []any
	Mapping  map[string]any
}

// Literal returns a PropertyValue that overwrites its target.
func Literal(v any) PropertyValue {
	return PropertyValue{Kind: LiteralProperty, Literal: v}
}

// Sequence returns a PropertyValue that is appended to its target.
func Sequence(items ...any) PropertyValue {
	return PropertyValue{Kind: SequenceProperty, Sequence: items}
}

// Mapping returns a PropertyValue that is merged into its target.
func Mapping(m map[string]any) PropertyValue {
	return PropertyValue{Kind: MappingProperty, Mapping: m}
}

// Value returns the payload selected by Kind.
func (v PropertyValue) Value() any {
	switch v.Kind {
	case SequenceProperty:
		return v.Sequence
	case MappingProperty:
		return v.Mapping
	default:
		return v.Literal
	}
}

// Apply returns the new value of a property currently holding current.
// The page script implements the same rules against live DOM objects.
func (v PropertyValue) Apply(current any) any {
	switch v.Kind {
	case SequenceProperty:
		existing, _ := current.([]any)
		out := make([]any, 0, len(existing)+len(v.Sequence))
		out = append(out, existing...)
		return append(out, v.Sequence...)
	case MappingProperty:
		out := make(map[string]any, len(v.Mapping))
		if existing, ok := current.(map[string]any); ok {
			for k, val := range existing {
				out[k] = val
			}
		}
		for k, val := range v.Mapping {
			out[k] = val
		}
		return out
	default:
		return v.Literal
	}
}

// Truthy applies JavaScript's boolean coercion to a decoded YAML or JSON scalar.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}

func (v *PropertyValue) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.SequenceNode:
		var seq []any
		if err := node.Decode(&seq); err != nil {
			return err
		}
		*v = Sequence(seq...)
	case yaml.MappingNode:
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return err
		}
		*v = Mapping(m)
	case yaml.ScalarNode:
		var lit any
		if err := node.Decode(&lit); err != nil {
			return err
		}
		*v = Literal(lit)
	default:
		return fmt.Errorf("line %d: unsupported property value", node.Line)
	}
	return nil
}

type wireProperty struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the value with an explicit kind tag so the page script
// never has to guess the merge rule from the runtime type.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.Value())
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireProperty{Kind: v.Kind.String(), Value: raw})
}

func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var w wireProperty
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, err := parsePropertyKind(w.Kind)
	if err != nil {
		return err
	}
	out := PropertyValue{Kind: kind}
	if len(w.Value) > 0 {
		switch kind {
		case SequenceProperty:
			err = json.Unmarshal(w.Value, &out.Sequence)
		case MappingProperty:
			err = json.Unmarshal(w.Value, &out.Mapping)
		default:
			err = json.Unmarshal(w.Value, &out.Literal)
		}
		if err != nil {
			return fmt.Errorf("decoding %s property: %w", kind, err)
		}
	}
	*v = out
	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
