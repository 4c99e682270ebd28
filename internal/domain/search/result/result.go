package result

import "fmt"

// Upstream document field names.
const (
	FieldPageContent = "page_content"
	FieldMetadata    = "metadata"
)

// Item is one upstream document as decoded from JSON.
type Item map[string]any

// PageContent returns the document text, or nil when absent.
// Non-string scalars are rendered with fmt.
func (i Item) PageContent() *string {
	v, ok := i[FieldPageContent]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	s := fmt.Sprint(v)
	return &s
}

// Metadata returns the source metadata mapping, or an empty map when absent or not a mapping.
func (i Item) Metadata() map[string]any {
	switch m := i[FieldMetadata].(type) {
	case map[string]any:
		return m
	case Metadata:
		return m.Map()
	default:
		return map[string]any{}
	}
}

// Record is the normalized output unit of aggregation.
type Record struct {
	PageContent *string  `json:"page_content"`
	Metadata    Metadata `json:"metadata"`
}

// Normalize reads page content and projected metadata from an upstream item.
func Normalize(it Item) Record {
	return Record{
		PageContent: it.PageContent(),
		Metadata:    Project(it.Metadata()),
	}
}

// Project returns the record with its metadata re-projected. Project is idempotent.
func (r Record) Project() Record {
	return Record{PageContent: r.PageContent, Metadata: Project(r.Metadata.Map())}
}

// Item converts the record back into an upstream-shaped item.
func (r Record) Item() Item {
	it := Item{FieldMetadata: r.Metadata.Map()}
	if r.PageContent != nil {
		it[FieldPageContent] = *r.PageContent
	}
	return it
}
