package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchemaYAML []byte

// Schema describes the tables the model may query
type Schema struct {
	Dialect string        `yaml:"dialect"`
	Tables  []SchemaTable `yaml:"tables"`
	Rules   []string      `yaml:"rules"`
}

// SchemaTable is one queryable table
type SchemaTable struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Columns     []SchemaColumn `yaml:"columns"`
}

// SchemaColumn is one column of a SchemaTable
type SchemaColumn struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
}

// ParseSchema decodes a YAML schema catalog
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if len(s.Tables) == 0 {
		return nil, fmt.Errorf("schema defines no tables")
	}
	for _, t := range s.Tables {
		if t.Name == "" || len(t.Columns) == 0 {
			return nil, fmt.Errorf("schema table %q must have a name and columns", t.Name)
		}
	}
	return &s, nil
}

// DefaultSchema returns the built-in catalog of the events and triage tables
func DefaultSchema() *Schema {
	s, err := ParseSchema(defaultSchemaYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded schema is invalid: %v", err))
	}
	return s
}

// LoadSchema reads the catalog from path, or returns the default when path is empty
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseSchema(data)
}

// Describe renders the catalog as the plain-text table listing used in prompts
func (s *Schema) Describe() string {
	var b strings.Builder
	for i, t := range s.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Table Name: %s\n", t.Name)
		if t.Description != "" {
			fmt.Fprintf(&b, "%s\n", t.Description)
		}
		b.WriteString("Columns:\n")
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "- %s (%s)", c.Name, c.Type)
			if c.Description != "" {
				fmt.Fprintf(&b, ": %s", c.Description)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
