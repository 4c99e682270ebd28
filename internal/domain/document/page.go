package document

import (
	"fmt"
	"regexp"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Page bounds.
const (
	DefaultLimit    = 10
	DefaultMaxLimit = 100
	maxNameLength   = 255
)

// Page is a validated read of one slice of a document container (immutable value object).
type Page struct {
	database  string
	container string
	offset    int
	limit     int
}

// NewPage validates and creates a Page.
// limit <= 0 selects DefaultLimit; limit above maxLimit and negative offsets are rejected.
func NewPage(database, container string, offset, limit, maxLimit int) (Page, error) {
	if err := validateName("database", database); err != nil {
		return Page{}, err
	}
	if err := validateName("container", container); err != nil {
		return Page{}, err
	}
	if offset < 0 {
		return Page{}, fmt.Errorf("offset must be >= 0, got %d", offset)
	}
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if limit <= 0 {
		limit = min(DefaultLimit, maxLimit)
	}
	if limit > maxLimit {
		return Page{}, fmt.Errorf("limit must be between 1 and %d, got %d", maxLimit, limit)
	}

	return Page{database: database, container: container, offset: offset, limit: limit}, nil
}

func validateName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%s name too long (max %d)", kind, maxNameLength)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%s name must be alphanumeric with dots, underscores and hyphens", kind)
	}
	return nil
}

// Database returns the database name.
func (p *Page) Database() string { return p.database }

// Container returns the container name.
func (p *Page) Container() string { return p.container }

// Offset returns the number of documents to skip.
func (p *Page) Offset() int { return p.offset }

// Limit returns the maximum number of documents to read.
func (p *Page) Limit() int { return p.limit }
