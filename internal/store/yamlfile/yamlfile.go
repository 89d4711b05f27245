// Package yamlfile loads a hive described as a YAML document into a
// memory store, so a projection can be mounted from a plain file.
//
// Nested mappings become containers and scalars become leaf payloads.
// A !!binary scalar contributes its decoded bytes; every other scalar
// contributes its literal text bytes, uninterpreted, matching the
// projection's duck-typed value model.
package yamlfile

import (
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hivefs/hivefs/internal/store/memory"
)

// Load reads and parses the hive file at path.
func Load(path string) (*memory.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hive file: %w", err)
	}
	return Parse(data)
}

// Parse builds a memory store from a YAML document.
func Parse(data []byte) (*memory.Store, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse hive file: %w", err)
	}

	s := memory.New()
	if len(doc.Content) == 0 {
		return s, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("hive file root must be a mapping, got %s", kindName(root.Kind))
	}
	if err := addMapping(s, root, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// addMapping inserts the children of a mapping node under the
// container at path.
func addMapping(s *memory.Store, m *yaml.Node, path []string) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i]
		val := m.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping key must be a scalar", key.Line)
		}
		child := append(append([]string(nil), path...), key.Value)

		switch val.Kind {
		case yaml.MappingNode:
			s.PutContainer(child...)
			if err := addMapping(s, val, child); err != nil {
				return err
			}
		case yaml.ScalarNode:
			payload, err := scalarBytes(val)
			if err != nil {
				return fmt.Errorf("line %d: value %q: %w", val.Line, key.Value, err)
			}
			s.PutValue(payload, child...)
		default:
			return fmt.Errorf("line %d: value %q must be a mapping or scalar, got %s",
				val.Line, key.Value, kindName(val.Kind))
		}
	}
	return nil
}

// scalarBytes returns the payload a scalar node contributes.
func scalarBytes(n *yaml.Node) ([]byte, error) {
	if n.Tag == "!!binary" {
		raw, err := base64.StdEncoding.DecodeString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("decode binary payload: %w", err)
		}
		return raw, nil
	}
	if n.Tag == "!!null" {
		return nil, nil
	}
	return []byte(n.Value), nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
