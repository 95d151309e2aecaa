/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package manifest defines the YAML collection manifest that provisions a
// registry: the collection identity, its ordered supply extensions, and
// the token ranges assigned to each extension.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/suparena/tokenregistry/errors"
	"github.com/suparena/tokenregistry/extension"
)

// TokenRange assigns a contiguous run of token IDs, inclusive on both ends.
type TokenRange struct {
	First uint64 `yaml:"first"`
	Last  uint64 `yaml:"last"`
}

// ExtensionDecl declares one supply extension. Extensions are ordered as
// written; their position in the list is their extension ID.
type ExtensionDecl struct {
	Name         string       `yaml:"name"`
	TargetSupply uint64       `yaml:"targetSupply"`
	Tokens       []TokenRange `yaml:"tokens"`
}

// Manifest is the collection provisioning document.
type Manifest struct {
	Name       string          `yaml:"name"`
	Symbol     string          `yaml:"symbol"`
	BaseURI    string          `yaml:"baseURI"`
	Extensions []ExtensionDecl `yaml:"extensions"`
}

// Parse decodes and validates a manifest from YAML bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the manifest for structural problems: a missing name,
// unnamed or duplicate extensions, inverted ranges, and token IDs assigned
// to more than one extension.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return errors.NewValidationError("name", "collection name is required")
	}
	if len(m.Extensions) == 0 {
		return errors.NewValidationError("extensions", "at least one extension is required")
	}

	names := make(map[string]bool, len(m.Extensions))
	assigned := make(map[uint64]string)
	for i, ext := range m.Extensions {
		field := fmt.Sprintf("extensions[%d]", i)
		if ext.Name == "" {
			return errors.NewValidationError(field+".name", "extension name is required")
		}
		if names[ext.Name] {
			return errors.NewValidationError(field+".name",
				fmt.Sprintf("duplicate extension name %q", ext.Name))
		}
		names[ext.Name] = true

		for j, r := range ext.Tokens {
			rangeField := fmt.Sprintf("%s.tokens[%d]", field, j)
			if r.Last < r.First {
				return errors.NewValidationError(rangeField,
					fmt.Sprintf("range %d..%d is inverted", r.First, r.Last))
			}
			for id := r.First; id <= r.Last; id++ {
				if owner, taken := assigned[id]; taken {
					return errors.NewValidationError(rangeField,
						fmt.Sprintf("token %d already assigned to extension %q", id, owner))
				}
				assigned[id] = ext.Name
			}
		}
	}
	return nil
}

// Provision builds an extension.Registry from the manifest: one extension
// per declaration, with every declared token range assigned.
func (m *Manifest) Provision() (*extension.Registry, error) {
	reg := extension.NewRegistry()
	for _, ext := range m.Extensions {
		id := reg.AddExtension(ext.Name, ext.TargetSupply)
		for _, r := range ext.Tokens {
			for tokenID := r.First; tokenID <= r.Last; tokenID++ {
				if err := reg.Assign(tokenID, id); err != nil {
					return nil, fmt.Errorf("assign token %d to extension %q: %w", tokenID, ext.Name, err)
				}
			}
		}
	}
	return reg, nil
}
