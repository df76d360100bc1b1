package entity

// ExtractionOptions controls how the platform parses a document. The zero
// value has every option off.
type ExtractionOptions struct {
	// SingleColumn assumes the input is a single column of text.
	SingleColumn bool `json:"single_column"`
	// Text returns body text as part of the results for each page.
	Text bool `json:"text"`
	// RawText returns all body text for the document in a single block.
	RawText bool `json:"raw_text"`
	// Tables returns the contents of tables separately from body text.
	Tables bool `json:"tables"`
	// Metadata returns document metadata: author, producer, page count,
	// page size, PDF version, creation and modification dates and so on.
	Metadata bool `json:"metadata"`
	// ForceRender renders pages to PNG instead of using native PDF text.
	ForceRender bool `json:"force_render"`
	// Detailed includes detailed positional information.
	Detailed bool `json:"detailed"`
}

// ExtractionOptionsBuilder assembles ExtractionOptions with chained setters.
type ExtractionOptionsBuilder struct {
	opts ExtractionOptions
}

func NewExtractionOptions() *ExtractionOptionsBuilder {
	return &ExtractionOptionsBuilder{}
}

func (b *ExtractionOptionsBuilder) SingleColumn(v bool) *ExtractionOptionsBuilder {
	b.opts.SingleColumn = v
	return b
}

func (b *ExtractionOptionsBuilder) Text(v bool) *ExtractionOptionsBuilder {
	b.opts.Text = v
	return b
}

func (b *ExtractionOptionsBuilder) RawText(v bool) *ExtractionOptionsBuilder {
	b.opts.RawText = v
	return b
}

func (b *ExtractionOptionsBuilder) Tables(v bool) *ExtractionOptionsBuilder {
	b.opts.Tables = v
	return b
}

func (b *ExtractionOptionsBuilder) Metadata(v bool) *ExtractionOptionsBuilder {
	b.opts.Metadata = v
	return b
}

func (b *ExtractionOptionsBuilder) ForceRender(v bool) *ExtractionOptionsBuilder {
	b.opts.ForceRender = v
	return b
}

func (b *ExtractionOptionsBuilder) Detailed(v bool) *ExtractionOptionsBuilder {
	b.opts.Detailed = v
	return b
}

// Build returns a copy; later setter calls do not affect it.
func (b *ExtractionOptionsBuilder) Build() ExtractionOptions {
	return b.opts
}
