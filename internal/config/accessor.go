package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Dot-notation access for the config commands. The config round-trips
// through its JSON form so paths follow the json tags, e.g.
// "filter.keyword" or "filter.metaPatterns.0".

func toTree(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// GetByPath resolves a dot-notation path to its current value.
func GetByPath(cfg *Config, path string) (any, error) {
	tree, err := toTree(cfg)
	if err != nil {
		return nil, err
	}

	var current any = tree
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			val, ok := node[key]
			if !ok {
				return nil, fmt.Errorf("key not found: %s", path)
			}
			current = val
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("invalid array index: %s", key)
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("cannot traverse into %T at %s", current, key)
		}
	}
	return current, nil
}

// SetByPath writes a value at a dot-notation path and unmarshals the result
// back into cfg, so type mismatches surface as errors rather than silent
// coercions.
func SetByPath(cfg *Config, path string, value any) error {
	tree, err := toTree(cfg)
	if err != nil {
		return err
	}

	parts := strings.Split(path, ".")
	if len(parts) == 0 {
		return fmt.Errorf("empty path")
	}

	parent := tree
	for _, key := range parts[:len(parts)-1] {
		child, ok := parent[key]
		if !ok {
			next := make(map[string]any)
			parent[key] = next
			parent = next
			continue
		}
		childMap, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot traverse into %T at %s", child, key)
		}
		parent = childMap
	}
	parent[parts[len(parts)-1]] = coerce(value)

	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

// coerce turns CLI string arguments into the bool or integer the field
// expects; everything else stays a string.
func coerce(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// ListPaths returns every leaf path with its current value.
func ListPaths(cfg *Config) map[string]any {
	tree, err := toTree(cfg)
	if err != nil {
		return nil
	}
	leaves := make(map[string]any)
	collectLeaves("", tree, leaves)
	return leaves
}

func collectLeaves(prefix string, tree map[string]any, leaves map[string]any) {
	for key, val := range tree {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if sub, ok := val.(map[string]any); ok {
			collectLeaves(path, sub, leaves)
			continue
		}
		leaves[path] = val
	}
}
