package mode

// Mode is the upstream search strategy tag.
type Mode string

// Search mode constants.
const (
	// Similarity ranks documents by vector similarity. It is the default.
	Similarity Mode = "SimilaritySearch"
	// MMR re-ranks similarity hits by maximal marginal relevance.
	MMR Mode = "MMRSearch"
)

// Default is used when the caller leaves the mode empty.
const Default = Similarity

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Similarity || m == MMR
}
