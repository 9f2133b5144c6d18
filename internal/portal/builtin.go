package portal

import "github.com/IshaanNene/BeritaKepri/internal/config"

// Portal IDs.
const (
	Presmedia   = "presmedia"
	SketsaNews  = "sketsanews"
	VNews       = "vnews"
	Kepripedia  = "kepripedia"
	HarianKepri = "hariankepri"
	SeputarKita = "seputarkita"
	ZonaKepri   = "zonakepri"
	Ulasan      = "ulasan"
	Batampos    = "batampos"
)

// Builtin returns the shipped portal definitions in display order.
// Selectors follow each portal's Tanjungpinang channel markup; any field
// can be overridden from the config file when a theme changes.
func Builtin() []config.PortalConfig {
	return []config.PortalConfig{
		{
			ID:                Presmedia,
			Name:              "Presmedia",
			ListingURL:        "https://presmedia.id/kanal/tanjungpinang/page/{page}",
			ContainerSelector: "article",
			TitleSelector:     "h2.entry-title a",
			TitleAttr:         "title",
			TitleTrimPrefixes: []string{"Tautan ke: "},
			DateSelector:      "time.entry-date",
			DateAttr:          "datetime",
			DateFormat:        "iso",
			ContentSelector:   "div.content",
		},
		{
			ID:                SketsaNews,
			Name:              "Sketsa News",
			ListingURL:        "https://sketsanews.id/category/3/31/page/{page}",
			ContainerSelector: "article",
			TitleSelector:     "h2.entry-title a",
			TitleAttr:         "title",
			TitleTrimPrefixes: []string{"Tautan ke: "},
			DateSelector:      "time.entry-date",
			DateAttr:          "datetime",
			DateFormat:        "iso",
			ContentSelector:   "div.content",
		},
		{
			ID:                  VNews,
			Name:                "VNews",
			ListingURL:          "https://www.vnews.click/category/kepri/tanjungpinang/page/{page}/",
			ContainerSelector:   "article",
			TitleSelector:       "h4.entry-title a",
			DateAtListing:       true,
			DateSelector:        "span.mg-blog-date",
			DateFormat:          "localized",
			DetailTitleSelector: "h1.entry-title",
			ContentSelector:     "div.entry-content",
		},
		{
			ID:                  Kepripedia,
			Name:                "Kepripedia",
			ListingURL:          "https://kepripedia.com/category/tanjungpinang/page/{page}/",
			ContainerSelector:   "div.td-module-container.td-category-pos-above",
			TitleSelector:       "h3.entry-title a",
			DateAtListing:       true,
			DateSelector:        "time.entry-date",
			DateAttr:            "datetime",
			DateFormat:          "iso",
			DetailTitleSelector: "h1.tdb-title-text",
			ContentSelector:     "div.tdb-block-inner.td-fix-index",
		},
		{
			ID:                HarianKepri,
			Name:              "Harian Kepri",
			ListingURL:        "https://www.hariankepri.com/kanal/daerah/tanjungpinang/page/{page}/",
			ContainerSelector: "div.td-module-meta-info",
			Exclusions: []config.ExclusionRule{
				{Ancestor: "div#tdi_113"},
				{Ancestor: "div#tdi_103"},
			},
			TitleSelector:       "p.entry-title a",
			DateSelector:        "time.entry-date",
			DateAttr:            "datetime",
			DateFormat:          "iso",
			DetailTitleSelector: "h1.tdb-title-text",
			ContentSelector:     "div.td-post-content",
		},
		{
			ID:                  SeputarKita,
			Name:                "Seputar Kita",
			ListingURL:          "https://seputarkita.co/category/tanjungpinang/page/{page}/",
			ContainerSelector:   "article",
			TitleSelector:       "h2.entry-title a",
			DateSelector:        "time.entry-date.published",
			DateAttr:            "datetime",
			DateFormat:          "iso",
			DetailTitleSelector: "h1.entry-title",
			ContentSelector:     "div.entry-content",
			ContentRemove:       []string{".sharedaddy", ".jp-relatedposts", ".baca-juga"},
		},
		{
			ID:                ZonaKepri,
			Name:              "Zona Kepri",
			ListingURL:        "https://zonakepri.com/category/tanjungpinang/page/{page}/",
			ContainerSelector: "div.jeg_posts article.jeg_post",
			Exclusions: []config.ExclusionRule{
				{XPath: "ancestor::div[contains(concat(' ', normalize-space(@class), ' '), ' jeg_sidebar ')]"},
			},
			TitleSelector:       "h3.jeg_post_title a",
			DateAtListing:       true,
			DateSelector:        "div.jeg_meta_date a",
			DateFormat:          "localized",
			DetailTitleSelector: "h1.jeg_post_title",
			ContentSelector:     "div.content-inner",
			ContentRemove:       []string{".jeg_share_button", ".jnews_inline_related_post", ".jeg_ad"},
		},
		{
			ID:                Ulasan,
			Name:              "Ulasan",
			ListingURL:        "https://ulasan.co/category/tanjungpinang/page/{page}/",
			ContainerSelector: "article",
			Exclusions: []config.ExclusionRule{
				{XPath: "ancestor::aside"},
			},
			TitleSelector:       ".entry-title a",
			DateAtListing:       true,
			DateSelector:        "time",
			DateAttr:            "datetime",
			DateFormat:          "iso",
			DetailTitleSelector: "h1.entry-title",
			ContentSelector:     "div.entry-content",
			ContentRemove:       []string{".related-posts", ".code-block"},
		},
		{
			ID:                  Batampos,
			Name:                "Batam Pos",
			ListingURL:          "https://batampos.co.id/category/tanjungpinang/page/{page}/",
			ContainerSelector:   "div.post-item",
			TitleSelector:       "h2 a",
			DateSelector:        "div.post-date",
			DateFormat:          "localized",
			DetailTitleSelector: "h1",
			ContentSelector:     "div.post-content",
			ContentRemove:       []string{"div.baca-juga", ".editor", ".penulis"},
		},
	}
}
