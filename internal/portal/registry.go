package portal

import (
	"fmt"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/parser"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Registry holds the portal definitions available to a run.
type Registry struct {
	order   []string
	portals map[string]config.PortalConfig
}

// NewRegistry loads the builtin portals and applies overrides by ID.
// An override with an unknown ID adds a new portal and must be complete.
func NewRegistry(overrides []config.PortalConfig) (*Registry, error) {
	r := &Registry{portals: make(map[string]config.PortalConfig)}
	for _, p := range Builtin() {
		r.order = append(r.order, p.ID)
		r.portals[p.ID] = p
	}

	for _, o := range overrides {
		base, ok := r.portals[o.ID]
		if !ok {
			if err := validate(o); err != nil {
				return nil, fmt.Errorf("portal %q: %w", o.ID, err)
			}
			r.order = append(r.order, o.ID)
			r.portals[o.ID] = o
			continue
		}
		merged := merge(base, o)
		if err := validate(merged); err != nil {
			return nil, fmt.Errorf("portal %q: %w", o.ID, err)
		}
		r.portals[o.ID] = merged
	}
	return r, nil
}

// Get returns the portal with the given ID.
func (r *Registry) Get(id string) (config.PortalConfig, error) {
	p, ok := r.portals[id]
	if !ok {
		return config.PortalConfig{}, fmt.Errorf("%w: %q", types.ErrUnknownPortal, id)
	}
	return p, nil
}

// List returns the portals in display order.
func (r *Registry) List() []config.PortalConfig {
	out := make([]config.PortalConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.portals[id])
	}
	return out
}

// IDs returns the portal IDs in display order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

func validate(p config.PortalConfig) error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if err := config.ValidateListingURL(p.ListingURL); err != nil {
		return err
	}
	if p.ContainerSelector == "" || p.TitleSelector == "" || p.ContentSelector == "" {
		return fmt.Errorf("container_selector, title_selector and content_selector are required")
	}
	if p.DateSelector == "" {
		return fmt.Errorf("date_selector is required")
	}
	if p.DateFormat != "iso" && p.DateFormat != "localized" {
		return fmt.Errorf("date_format must be 'iso' or 'localized', got %q", p.DateFormat)
	}

	selectors := []string{
		p.ContainerSelector, p.TitleSelector, p.DateSelector,
		p.DetailTitleSelector, p.ContentSelector, p.ParagraphSelector,
	}
	selectors = append(selectors, p.ContentRemove...)
	for _, rule := range p.Exclusions {
		selectors = append(selectors, rule.Ancestor)
	}
	if err := parser.CompileSelectors(selectors...); err != nil {
		return err
	}
	if _, err := parser.NewExcluder(p.Exclusions); err != nil {
		return err
	}
	return nil
}

// merge overlays the non-zero fields of o onto base. DateAtListing is a
// plain bool, so an override can only switch it on.
func merge(base, o config.PortalConfig) config.PortalConfig {
	if o.Name != "" {
		base.Name = o.Name
	}
	if o.ListingURL != "" {
		base.ListingURL = o.ListingURL
	}
	if o.ContainerSelector != "" {
		base.ContainerSelector = o.ContainerSelector
	}
	if o.Exclusions != nil {
		base.Exclusions = o.Exclusions
	}
	if o.TitleSelector != "" {
		base.TitleSelector = o.TitleSelector
	}
	if o.TitleAttr != "" {
		base.TitleAttr = o.TitleAttr
	}
	if o.TitleTrimPrefixes != nil {
		base.TitleTrimPrefixes = o.TitleTrimPrefixes
	}
	if o.DateAtListing {
		base.DateAtListing = true
	}
	if o.DateSelector != "" {
		base.DateSelector = o.DateSelector
	}
	if o.DateAttr != "" {
		base.DateAttr = o.DateAttr
	}
	if o.DateFormat != "" {
		base.DateFormat = o.DateFormat
	}
	if o.DetailTitleSelector != "" {
		base.DetailTitleSelector = o.DetailTitleSelector
	}
	if o.ContentSelector != "" {
		base.ContentSelector = o.ContentSelector
	}
	if o.ContentRemove != nil {
		base.ContentRemove = o.ContentRemove
	}
	if o.ParagraphSelector != "" {
		base.ParagraphSelector = o.ParagraphSelector
	}
	return base
}
