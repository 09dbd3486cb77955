package domain

// Status classifies the lifecycle of a funding call.
type Status string

const (
	StatusOpen    Status = "open"
	StatusPlanned Status = "planned"
	StatusClosed  Status = "closed"
	StatusUnknown Status = "unknown"
)

// Languages lists the language keys every title/summary map carries.
// A missing translation is an explicit null, never an absent key.
var Languages = []string{"sv", "en"}

// Deadline is one submission cutoff. Date is always YYYY-MM-DD; an entry
// with an unparsable date is dropped before it reaches this type.
type Deadline struct {
	Type string `json:"type"`
	Date string `json:"date"`
}

// Document points at a formal instrument attached to a call: the call text,
// a work programme, guidance, templates.
type Document struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	Lang        *string `json:"lang"`
	Primary     *bool   `json:"primary"`
	Filename    *string `json:"filename"`
	ExternalID  *string `json:"external_id"`
}

// Opportunity is the canonical record every provider mapper produces.
// It is immutable after construction; persistence gives it continuity
// across ingestion runs, keyed by SourceUID.
type Opportunity struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	SourceUID  string             `json:"source_uid"`
	Title      map[string]*string `json:"title"`
	Summary    map[string]*string `json:"summary"`
	Programme  *string            `json:"programme"`
	Sponsor    *string            `json:"sponsor"`
	TopicCodes []string           `json:"topic_codes"`
	Tags       []string           `json:"tags"`
	Deadlines  []Deadline         `json:"deadlines"`
	Status     Status             `json:"status"`
	Links      map[string]string  `json:"links"`
	OpensAt    *string            `json:"opens_at"`
	ClosesAt   *string            `json:"closes_at"`
	Notes      *string            `json:"notes"`
	Documents  []Document         `json:"documents,omitempty"`
}
