package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Alp4ka/persistpager"
)

// parseOverrides turns key=value pairs into a provider override. Values are
// YAML scalars or flow collections, so "10" is an int and "[id asc]" a list.
func parseOverrides(pairs []string) (persistpager.Config, error) {
	override := make(persistpager.Config, len(pairs))

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q, expected key=value", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid override %q: %w", pair, err)
		}
		override[key] = value
	}

	return override, nil
}
