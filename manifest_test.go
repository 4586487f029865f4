package greenroom

import (
	"strings"
	"testing"
)

// --- Test JSON fixtures ---

const gameManifestJSON = `{
  "bundles": [
    {
      "name": "boot",
      "assets": {
        "logo": "images/logo.png",
        "ui-font": "fonts/ui.ttf"
      }
    },
    {
      "name": "game",
      "assets": {
        "hero": "images/hero.png",
        "theme": "audio/theme.ogg",
        "ui-font": "fonts/ui.ttf"
      }
    }
  ]
}`

// --- ParseManifest tests ---

func TestParseManifest_Valid(t *testing.T) {
	m, err := ParseManifest([]byte(gameManifestJSON))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if got := len(m.Bundles); got != 2 {
		t.Fatalf("bundle count = %d, want 2", got)
	}
	if m.Bundles[0].Name != "boot" || m.Bundles[1].Name != "game" {
		t.Errorf("bundle names = %q, %q, want boot, game", m.Bundles[0].Name, m.Bundles[1].Name)
	}
	if got := m.Bundles[1].Assets["hero"]; got != "images/hero.png" {
		t.Errorf("game bundle hero = %q, want images/hero.png", got)
	}
}

func TestParseManifest_SharedAssetSameURL(t *testing.T) {
	// ui-font appears in both bundles with an identical locator; that is
	// the supported many-to-many shape and must validate.
	if _, err := ParseManifest([]byte(gameManifestJSON)); err != nil {
		t.Errorf("shared asset with same URL rejected: %v", err)
	}
}

func TestParseManifest_InvalidJSON(t *testing.T) {
	_, err := ParseManifest([]byte(`{invalid`))
	if err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}

func TestParseManifest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{
			"duplicate bundle name",
			`{"bundles":[
				{"name":"a","assets":{"x":"x.png"}},
				{"name":"a","assets":{"y":"y.png"}}
			]}`,
			"duplicate bundle",
		},
		{
			"empty bundle name",
			`{"bundles":[{"name":"","assets":{"x":"x.png"}}]}`,
			"empty name",
		},
		{
			"empty asset key",
			`{"bundles":[{"name":"a","assets":{"":"x.png"}}]}`,
			"empty key",
		},
		{
			"empty locator",
			`{"bundles":[{"name":"a","assets":{"x":""}}]}`,
			"empty locator",
		},
		{
			"same key different URLs",
			`{"bundles":[
				{"name":"a","assets":{"x":"one.png"}},
				{"name":"b","assets":{"x":"two.png"}}
			]}`,
			"maps to both",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.json))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// --- AddBundle tests ---

func TestManifest_AddBundle(t *testing.T) {
	m := &Manifest{}
	m.AddBundle("boot", map[string]string{"logo": "logo.png"})
	m.AddBundle("game", map[string]string{"hero": "hero.png"})

	if got := len(m.Bundles); got != 2 {
		t.Fatalf("bundle count = %d, want 2", got)
	}
	if err := m.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestManifest_AddBundle_DuplicateCaughtByValidate(t *testing.T) {
	m := &Manifest{}
	m.AddBundle("boot", map[string]string{"logo": "logo.png"})
	m.AddBundle("boot", map[string]string{"logo": "logo.png"})

	if err := m.validate(); err == nil {
		t.Error("expected duplicate bundle error, got nil")
	}
}
