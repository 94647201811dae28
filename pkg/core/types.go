package core

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arnavsurve/popform/pkg/types"
)

type PageDefinition = types.PageDefinition

type Step = types.Step

type ExecutionContext = types.ExecutionContext

type Level = types.Level

// Level constants
const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)

// Config is a batch of pages. The document may be a list of pages or a single page.
type Config struct {
	Pages []PageDefinition
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.SequenceNode:
		var pages []PageDefinition
		if err := node.Decode(&pages); err != nil {
			return err
		}
		c.Pages = pages
	case yaml.MappingNode:
		var page PageDefinition
		if err := node.Decode(&page); err != nil {
			return err
		}
		c.Pages = []PageDefinition{page}
	default:
		return fmt.Errorf("line %d: configuration must be a page or a list of pages", node.Line)
	}
	return nil
}

// DefaultPageName names a page declared without a name.
func DefaultPageName(index int) string {
	return fmt.Sprintf("page-%d", index)
}

func (c *Config) normalizeNames() {
	for i := range c.Pages {
		if c.Pages[i].Name == "" {
			c.Pages[i].Name = DefaultPageName(i)
		}
	}
}
