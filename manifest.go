package greenroom

import (
	"encoding/json"
	"fmt"
)

// Bundle is a named group of assets loaded together. Assets maps an asset key
// (unique within the bundle) to its source locator, typically a URL or a path
// understood by the Source's Fetcher.
type Bundle struct {
	Name   string            `json:"name"`
	Assets map[string]string `json:"assets"`
}

// Manifest declares every bundle known at startup. A Manifest initializes a
// Source exactly once; it must not be modified after being passed to Init.
//
// The same asset key may appear in several bundles as long as it maps to the
// same locator everywhere — such assets are downloaded once and shared. The
// same key mapped to different locators is a validation error.
type Manifest struct {
	Bundles []Bundle `json:"bundles"`
}

// ParseManifest parses and validates manifest JSON:
//
//	{
//	  "bundles": [
//	    {"name": "loading", "assets": {"logo": "img/logo.png"}},
//	    {"name": "game",    "assets": {"hero": "img/hero.png", "music": "snd/theme.ogg"}}
//	  ]
//	}
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("greenroom: failed to parse manifest JSON: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// AddBundle appends a bundle to the manifest. Intended for manifests built in
// code rather than parsed from JSON; validation still happens at Init time.
func (m *Manifest) AddBundle(name string, assets map[string]string) {
	m.Bundles = append(m.Bundles, Bundle{Name: name, Assets: assets})
}

// validate checks bundle name uniqueness and cross-bundle key consistency.
func (m *Manifest) validate() error {
	names := make(map[string]bool, len(m.Bundles))
	locators := make(map[string]string)
	for _, b := range m.Bundles {
		if b.Name == "" {
			return fmt.Errorf("greenroom: manifest contains a bundle with an empty name")
		}
		if names[b.Name] {
			return fmt.Errorf("greenroom: duplicate bundle name %q in manifest", b.Name)
		}
		names[b.Name] = true
		for key, url := range b.Assets {
			if key == "" {
				return fmt.Errorf("greenroom: bundle %q contains an asset with an empty key", b.Name)
			}
			if url == "" {
				return fmt.Errorf("greenroom: asset %q in bundle %q has an empty locator", key, b.Name)
			}
			if prev, ok := locators[key]; ok && prev != url {
				return fmt.Errorf("greenroom: asset key %q maps to both %q and %q across bundles", key, prev, url)
			}
			locators[key] = url
		}
	}
	return nil
}
