package types

// Sentinel values for fields that could not be recovered from a page.
// They are real strings, not absent keys: every record always carries
// all five fields.
const (
	UnknownTitle        = "Unknown title"
	UnknownAvailability = "Unknown"
	NotAvailable        = "N/A"
)

// ProductRecord is the canonical unit produced by a scrape. All fields
// are kept as page text: Price preserves the currency formatting found
// on the page, Rating is formatted to one decimal on a 0-5 scale.
type ProductRecord struct {
	Title        string `json:"title" bson:"title"`
	Price        string `json:"price" bson:"price"`
	Availability string `json:"availability" bson:"availability"`
	Rating       string `json:"rating" bson:"rating"`
	Reviews      string `json:"reviews" bson:"reviews"`

	// Extra carries passthrough fields (source URL, platform hints)
	// for persistence. It is not part of the wire shape.
	Extra map[string]any `json:"-" bson:"-"`
}

// NewProductRecord returns a record with every field set to its sentinel.
func NewProductRecord() ProductRecord {
	return ProductRecord{
		Title:        UnknownTitle,
		Price:        NotAvailable,
		Availability: UnknownAvailability,
		Rating:       NotAvailable,
		Reviews:      NotAvailable,
	}
}

// SetExtra attaches a passthrough field, allocating the map on first use.
func (p *ProductRecord) SetExtra(key string, value any) {
	if p.Extra == nil {
		p.Extra = make(map[string]any)
	}
	p.Extra[key] = value
}

// Meaningful reports whether at least a title or a price was actually
// recovered. Records failing this are dropped by the extractors.
func (p ProductRecord) Meaningful() bool {
	return p.Title != UnknownTitle || p.Price != NotAvailable
}
