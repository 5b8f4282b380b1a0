package entities

// Record kinds held by the embedding indexes. Each index holds exactly one
// kind; the kind also names the persisted snapshot file.
const (
	EntryKindMedication = "medication"
	EntryKindSymptom    = "symptom"
)

// CandidateMeta carries the catalog fields replicated into an index entry, so
// retrieval can filter and rank without a database round trip per match.
type CandidateMeta struct {
	Name             string   `json:"name"`
	ActiveIngredient string   `json:"active_ingredient,omitempty"`
	TreatmentClass   string   `json:"treatment_class,omitempty"`
	Stock            int      `json:"stock"`
	AllergyTags      []string `json:"allergy_tags,omitempty"`
	IsSupporting     bool     `json:"is_supporting,omitempty"`
}

// EmbeddingEntry is one indexed record: the embedded text, its vector, and
// the metadata snapshot taken at build time.
type EmbeddingEntry struct {
	RecordID int64         `json:"record_id"`
	Kind     string        `json:"kind"`
	Text     string        `json:"text"`
	Vector   []float64     `json:"vector"`
	Meta     CandidateMeta `json:"meta"`
}

// IndexMatch is a nearest-neighbor hit with its distance in [0,1].
type IndexMatch struct {
	Entry    EmbeddingEntry `json:"entry"`
	Distance float64        `json:"distance"`
}

// IndexStats describes one index snapshot.
type IndexStats struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Ready bool   `json:"ready"`
}

// SearchFilters narrows medication retrieval. Allergy matching against entry
// tags is case-insensitive.
type SearchFilters struct {
	InStockOnly      bool     `json:"in_stock_only,omitempty"`
	ExcludeAllergies []string `json:"exclude_allergies,omitempty"`
}

// RetrievalCandidate is a filtered, ranked medication match. RelevanceScore
// is 1 minus the index distance, so it is bounded in [0,1] with higher being
// more relevant.
type RetrievalCandidate struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	ActiveIngredient string   `json:"active_ingredient,omitempty"`
	TreatmentClass   string   `json:"treatment_class,omitempty"`
	Stock            int      `json:"stock"`
	AllergyTags      []string `json:"allergy_tags,omitempty"`
	IsSupporting     bool     `json:"is_supporting,omitempty"`
	RelevanceScore   float64  `json:"relevance_score"`
}

// SymptomMatch is a catalog symptom matched against free-text input.
type SymptomMatch struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
