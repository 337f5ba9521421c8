package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Paths follow the file layout, with list elements addressed by index:
//
//	mfact
//	colors.selected.border
//	keys.3.command
//	rules.0.tags
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// lookupValue walks the config's YAML form so every exported setting is
// addressable without a hand-maintained path table.
func lookupValue(cfg *Config, path string) (any, error) {
	var root yaml.Node
	if err := root.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	node := &root
	for _, part := range strings.Split(path, ".") {
		next, err := childNode(node, part)
		if err != nil {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		node = next
	}

	var value any
	if err := node.Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return value, nil
}

func childNode(node *yaml.Node, key string) (*yaml.Node, error) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				return node.Content[i+1], nil
			}
		}
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(key)
		if err == nil && idx >= 0 && idx < len(node.Content) {
			return node.Content[idx], nil
		}
	}
	return nil, fmt.Errorf("no child %q", key)
}
