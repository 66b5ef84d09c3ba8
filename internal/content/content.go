package content

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed services/*.md
var servicesFS embed.FS

// ServicePage is one entry of the studio's service catalogue.
type ServicePage struct {
	Slug        string
	Title       string
	Description string
	Image       string
	Pricing     string
	Turnaround  string
	Body        template.HTML
}

var catalog = []ServicePage{
	{Slug: "photo-printing", Title: "Photo Printing", Description: "Any size, any format, premium quality.", Image: "/static/img/printing.svg",
		Pricing: "From Rs. 200 for 4×6 prints. Packages for bulk orders.", Turnaround: "Standard prints in 1 hour; specialty sizes and bulk orders in 24-48 hours."},
	{Slug: "passport-photos", Title: "Passport & ID Photos", Description: "Instant compliant ID photos.", Image: "/static/img/passport.svg",
		Pricing: "Rs. 300 for a set of 4. Digital copy on request.", Turnaround: "Ready in 10 minutes or less."},
	{Slug: "visa-photos", Title: "Visa Photos for Any Country", Description: "Visa-ready in minutes.", Image: "/static/img/visa_photos.svg",
		Pricing: "From Rs. 300 per set, digital copy included.", Turnaround: "Ready in 15 minutes."},
	{Slug: "custom-framing", Title: "Custom Photo Framing", Description: "Frames made for your photos.", Image: "/static/img/frames.svg",
		Pricing: "From Rs. 500 depending on size and materials.", Turnaround: "2-5 business days."},
	{Slug: "photo-restoration", Title: "Photo Restoration", Description: "Old memories brought back to life.", Image: "/static/img/restoration.svg",
		Pricing: "From Rs. 400. Complex work quoted individually.", Turnaround: "3-7 business days."},
	{Slug: "laminating", Title: "Laminating", Description: "Protect important documents and photos.", Image: "/static/img/laminating.svg",
		Pricing: "From Rs. 100 for card-size items; larger documents by size.", Turnaround: "15-30 minutes for standard items."},
	{Slug: "visiting-cards", Title: "Visiting Card Printing", Description: "Design. Print. Impress.", Image: "/static/img/visiting_card.svg",
		Pricing: "From Rs. 1500 for 100 standard cards.", Turnaround: "24-48 hours. Rush orders available."},
}

// Catalog holds the rendered service pages in display order.
type Catalog struct {
	pages  []ServicePage
	bySlug map[string]int
}

// NewMarkdown is the renderer used for every content body.
func NewMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Typographer),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
}

// LoadCatalog renders each service's Markdown body once.
func LoadCatalog() (*Catalog, error) {
	md := NewMarkdown()
	c := &Catalog{bySlug: make(map[string]int, len(catalog))}
	for _, p := range catalog {
		src, err := servicesFS.ReadFile("services/" + p.Slug + ".md")
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", p.Slug, err)
		}
		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("render %s: %w", p.Slug, err)
		}
		// Bodies are our own embedded files; the renderer escapes raw HTML.
		p.Body = template.HTML(buf.String())
		c.bySlug[p.Slug] = len(c.pages)
		c.pages = append(c.pages, p)
	}
	return c, nil
}

func (c *Catalog) All() []ServicePage {
	return c.pages
}

func (c *Catalog) Get(slug string) (ServicePage, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return ServicePage{}, false
	}
	return c.pages[i], true
}
