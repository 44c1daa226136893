package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyKeyPath is returned when an empty key path is provided.
	ErrEmptyKeyPath = errors.New("empty key path")
	// ErrConfigExists is returned by WriteDefault when the target exists and
	// force is not set.
	ErrConfigExists = errors.New("config file already exists")
)

// ParseKeyPath splits a dotted key path, e.g. "notifiers.webhook.url".
func ParseKeyPath(path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyKeyPath
	}
	return strings.Split(path, "."), nil
}

// SetConfigValue sets key to value in the YAML file at filePath, keeping
// comments and key order. key and value are checked against KnownKeys. The
// file is created if missing.
func SetConfigValue(filePath, key, value string) error {
	if ext := strings.ToLower(filepath.Ext(filePath)); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config set only edits YAML files: %s", filePath)
	}
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return fmt.Errorf("validating value: %w", err)
	}
	keyPath, err := ParseKeyPath(key)
	if err != nil {
		return err
	}

	root, err := loadOrCreateYAML(filePath)
	if err != nil {
		return err
	}
	if err := SetNestedValue(root, keyPath, parsed.Parsed); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	content, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := writeAtomically(filePath, content); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// WriteDefault writes the commented default configuration to path.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	if err := writeAtomically(path, []byte(DefaultFileTemplate)); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// SetNestedValue sets a scalar in a YAML document, creating intermediate
// mappings. A non-mapping node on the path is replaced by a mapping.
func SetNestedValue(root *yaml.Node, keyPath []string, value interface{}) error {
	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}
	node := mappingOf(root)
	if node == nil {
		return fmt.Errorf("root node must be document or mapping, got %v", root.Kind)
	}

	for i, key := range keyPath {
		last := i == len(keyPath)-1
		idx := findKeyIndex(node, key)
		if idx == -1 {
			child := &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, child)
			idx = len(node.Content) - 2
		}
		child := node.Content[idx+1]
		if last {
			setScalarValue(child, value)
			return nil
		}
		if child.Kind != yaml.MappingNode {
			child.Kind = yaml.MappingNode
			child.Tag = ""
			child.Value = ""
			child.Content = nil
		}
		node = child
	}
	return nil
}

func mappingOf(root *yaml.Node) *yaml.Node {
	switch {
	case root.Kind == yaml.DocumentNode && len(root.Content) > 0:
		return root.Content[0]
	case root.Kind == yaml.MappingNode:
		return root
	default:
		return nil
	}
}

func findKeyIndex(node *yaml.Node, key string) int {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func setScalarValue(node *yaml.Node, value interface{}) {
	node.Kind = yaml.ScalarNode
	node.Content = nil
	switch v := value.(type) {
	case bool:
		node.Tag = "!!bool"
		node.Value = fmt.Sprintf("%t", v)
	case int:
		node.Tag = "!!int"
		node.Value = fmt.Sprintf("%d", v)
	case string:
		node.Tag = "!!str"
		node.Value = v
	default:
		node.Tag = ""
		node.Value = fmt.Sprintf("%v", v)
	}
}

// writeAtomically writes content via a temp file and rename, creating
// parent directories.
func writeAtomically(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".webhookrc-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	tmpPath = ""
	return nil
}

func loadOrCreateYAML(filePath string) (*yaml.Node, error) {
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if root.Kind == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	return &root, nil
}
