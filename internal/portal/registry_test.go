package portal

import (
	"errors"
	"testing"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/parser"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

func TestBuiltinPortalsAreValid(t *testing.T) {
	builtins := Builtin()
	if len(builtins) != 9 {
		t.Fatalf("expected 9 portals, got %d", len(builtins))
	}
	seen := make(map[string]bool)
	for _, p := range builtins {
		if seen[p.ID] {
			t.Errorf("duplicate portal id %q", p.ID)
		}
		seen[p.ID] = true
		if err := validate(p); err != nil {
			t.Errorf("portal %s invalid: %v", p.ID, err)
		}
		if _, err := parser.NewExcluder(p.Exclusions); err != nil {
			t.Errorf("portal %s exclusions do not compile: %v", p.ID, err)
		}
	}
}

func TestRegistryOverrideByID(t *testing.T) {
	r, err := NewRegistry([]config.PortalConfig{
		{ID: VNews, ContentSelector: "div.post-body"},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	p, err := r.Get(VNews)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.ContentSelector != "div.post-body" {
		t.Errorf("override not applied: %q", p.ContentSelector)
	}
	if p.ContainerSelector != "article" || !p.DateAtListing {
		t.Error("fields without override must keep builtin values")
	}
	if len(r.IDs()) != 9 {
		t.Errorf("override must not add a portal, got %d", len(r.IDs()))
	}
}

func TestRegistryAddsPortal(t *testing.T) {
	r, err := NewRegistry([]config.PortalConfig{{
		ID:                "tanjungpinangpos",
		ListingURL:        "https://tanjungpinangpos.id/category/daerah/page/{page}/",
		ContainerSelector: "article",
		TitleSelector:     "h2 a",
		DateSelector:      "time",
		DateAttr:          "datetime",
		DateFormat:        "iso",
		ContentSelector:   "div.entry-content",
	}})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	ids := r.IDs()
	if ids[len(ids)-1] != "tanjungpinangpos" {
		t.Errorf("new portal should be listed last, got %v", ids)
	}
}

func TestRegistryRejectsIncompletePortal(t *testing.T) {
	_, err := NewRegistry([]config.PortalConfig{{ID: "setengah", ListingURL: "https://x.id/page/{page}"}})
	if err == nil {
		t.Error("expected error for incomplete portal")
	}
}

func TestRegistryRejectsBrokenSelectors(t *testing.T) {
	tests := []struct {
		name     string
		override config.PortalConfig
	}{
		{"container", config.PortalConfig{ID: VNews, ContainerSelector: "article["}},
		{"content remove", config.PortalConfig{ID: VNews, ContentRemove: []string{".ads", "div:nth-child("}}},
		{"ancestor", config.PortalConfig{ID: VNews, Exclusions: []config.ExclusionRule{{Ancestor: "div#"}}}},
		{"xpath", config.PortalConfig{ID: VNews, Exclusions: []config.ExclusionRule{{XPath: "ancestor::["}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry([]config.PortalConfig{tt.override}); err == nil {
				t.Error("expected the registry to reject the override")
			}
		})
	}
}

func TestRegistryUnknownPortal(t *testing.T) {
	r, _ := NewRegistry(nil)
	_, err := r.Get("antara")
	if !errors.Is(err, types.ErrUnknownPortal) {
		t.Errorf("expected ErrUnknownPortal, got %v", err)
	}
}
