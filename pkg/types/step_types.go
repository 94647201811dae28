package types

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// PageDefinition describes one page: where to navigate and which steps to run there.
// When Steps is absent the embedded Step holds the page's single implicit step.
type PageDefinition struct {
	Name        string      `yaml:"name"`
	URL         string      `yaml:"url"`
	NetworkIdle NetworkIdle `yaml:"networkIdle,omitempty"`
	Message     string      `yaml:"message,omitempty"`
	Steps       []Step      `yaml:"steps,omitempty"`
	Step        `yaml:",inline"`

	explicitSteps bool
}

func (p *PageDefinition) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: page definition must be a mapping", node.Line)
	}

	type plain PageDefinition
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*p = PageDefinition(decoded)

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "steps" {
			p.explicitSteps = true
		}
	}
	return nil
}

// HasExplicitSteps reports whether the page declared a 'steps' list.
func (p PageDefinition) HasExplicitSteps() bool {
	return p.explicitSteps || len(p.Steps) > 0
}

// NormalizedSteps returns the ordered steps to execute for this page.
func (p PageDefinition) NormalizedSteps() []Step {
	if p.HasExplicitSteps() {
		return p.Steps
	}
	return []Step{p.Step}
}

// StepLabel names a step for progress messages and debug screenshots.
func (p PageDefinition) StepLabel(index int) string {
	if p.HasExplicitSteps() {
		return fmt.Sprintf("%s-%d", p.Name, index)
	}
	return p.Name
}

// Step is one unit of DOM mutation plus an optional navigation-causing action.
type Step struct {
	Description string        `yaml:"description,omitempty"`
	IFrame      string        `yaml:"iframe,omitempty"`
	Fields      Fields        `yaml:"fields,omitempty"`
	Elements    []ElementSpec `yaml:"elements,omitempty"`
	Click       Selectors     `yaml:"click,omitempty"`
	Keys        []string      `yaml:"keys,omitempty"`
	Delay       int           `yaml:"delay,omitempty"`
}

// HasAction reports whether the step clicks or presses keys.
func (s Step) HasAction() bool {
	return len(s.Click) > 0 || len(s.Keys) > 0
}

// HasContent reports whether any step key was set.
func (s Step) HasContent() bool {
	return s.Description != "" || s.IFrame != "" || len(s.Fields) > 0 || len(s.Elements) > 0 ||
		s.HasAction() || s.Delay != 0
}

// DelayDuration converts the millisecond delay.
func (s Step) DelayDuration() time.Duration {
	return time.Duration(s.Delay) * time.Millisecond
}

// Field pairs a form field name with the value to apply to it.
type Field struct {
	Name  string
	Value FieldValue
}

// Fields keeps the declaration order of a step's 'fields' mapping.
type Fields []Field

func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: 'fields' must be a mapping", node.Line)
	}
	out := make(Fields, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var value FieldValue
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("decoding field %q: %w", name, err)
		}
		out = append(out, Field{Name: name, Value: value})
	}
	*f = out
	return nil
}

// FieldValue is either a literal scalar or a set of DOM properties.
// Literal is the scalar's text, assigned to an input's value. Checked is the
// scalar's truthiness as typed in YAML, assigned to a checkbox.
type FieldValue struct {
	Literal    *string
	Checked    bool
	Properties map[string]PropertyValue
}

// LiteralField builds a FieldValue assigning s to the element's value.
func LiteralField(s string) FieldValue {
	return FieldValue{Literal: &s, Checked: s != ""}
}

// PropertyField builds an object-valued FieldValue.
func PropertyField(props map[string]PropertyValue) FieldValue {
	return FieldValue{Properties: props}
}

// IsLiteral reports whether the value was given as a plain scalar.
func (v FieldValue) IsLiteral() bool {
	return v.Literal != nil
}

func (v *FieldValue) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		var raw any
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		lit := node.Value
		if raw == nil {
			lit = ""
		}
		*v = FieldValue{Literal: &lit, Checked: Truthy(raw)}
	case yaml.MappingNode:
		props, err := decodeProperties(node, "name")
		if err != nil {
			return err
		}
		*v = PropertyField(props)
	default:
		return fmt.Errorf("line %d: field value must be a string or a mapping", node.Line)
	}
	return nil
}

// ElementSpec mutates the first element matching Query.
type ElementSpec struct {
	Query      string
	Field      bool
	Properties map[string]PropertyValue
}

func (e *ElementSpec) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: element must be a mapping", node.Line)
	}
	var spec ElementSpec
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "query":
			if err := val.Decode(&spec.Query); err != nil {
				return fmt.Errorf("decoding element query: %w", err)
			}
		case "field":
			if err := val.Decode(&spec.Field); err != nil {
				return fmt.Errorf("decoding element field flag: %w", err)
			}
		default:
			var pv PropertyValue
			if err := val.Decode(&pv); err != nil {
				return fmt.Errorf("decoding element property %q: %w", key, err)
			}
			if spec.Properties == nil {
				spec.Properties = make(map[string]PropertyValue)
			}
			spec.Properties[key] = pv
		}
	}
	*e = spec
	return nil
}

// Selectors accepts either a single selector or a list of them.
type Selectors []string

func (s *Selectors) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		*s = Selectors{node.Value}
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
	default:
		return fmt.Errorf("line %d: 'click' must be a selector or a list of selectors", node.Line)
	}
	return nil
}

// NetworkIdle is the page's networkIdle setting: false, true, or an idle time in ms.
type NetworkIdle struct {
	Enabled  bool
	IdleTime time.Duration
}

func (n *NetworkIdle) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: 'networkIdle' must be a boolean or a number", node.Line)
	}
	var enabled bool
	if err := node.Decode(&enabled); err == nil {
		*n = NetworkIdle{Enabled: enabled}
		if enabled {
			n.IdleTime = DefaultNetworkIdleTime
		}
		return nil
	}
	var ms float64
	if err := node.Decode(&ms); err != nil {
		return fmt.Errorf("line %d: 'networkIdle' must be a boolean or a number", node.Line)
	}
	if ms <= 0 {
		*n = NetworkIdle{}
		return nil
	}
	*n = NetworkIdle{Enabled: true, IdleTime: time.Duration(ms * float64(time.Millisecond))}
	return nil
}

// WaitOptions derives how navigation completion is detected.
func (n NetworkIdle) WaitOptions() WaitOptions {
	if !n.Enabled {
		return WaitOptions{Until: WaitLoad}
	}
	idle := n.IdleTime
	if idle <= 0 {
		idle = DefaultNetworkIdleTime
	}
	return WaitOptions{Until: WaitNetworkIdle, IdleTime: idle, MaxInflight: DefaultMaxInflight}
}

func decodeProperties(node *yaml.Node, reserved ...string) (map[string]PropertyValue, error) {
	skip := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		skip[r] = struct{}{}
	}
	props := make(map[string]PropertyValue, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if _, ok := skip[key]; ok {
			continue
		}
		var pv PropertyValue
		if err := node.Content[i+1].Decode(&pv); err != nil {
			return nil, fmt.Errorf("decoding property %q: %w", key, err)
		}
		props[key] = pv
	}
	return props, nil
}
