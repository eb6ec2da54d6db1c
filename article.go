package feedmill

import (
	"time"

	"github.com/google/uuid"
)

// RetentionHorizon is the age cutoff beyond which content is neither
// imported nor retained. Import-time filtering and the purge job both use
// this constant so "never imported" and "deleted after import" cannot
// diverge.
const RetentionHorizon = 2 * 365 * 24 * time.Hour

// Field-length caps applied during normalization.
const (
	MaxTitleLen   = 200
	MaxContentLen = 2000
)

// Article is a normalized article record ready for storage. Its
// publication date always lies inside the plausibility window enforced by
// the date resolver, and OriginalAddress is an absolute https URL distinct
// from the source's base address.
type Article struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	OriginalAddress string    `json:"original_address"`
	PublicationDate time.Time `json:"publication_date"`
	SourceID        uuid.UUID `json:"source_id"`
	SourceName      string    `json:"source_name"`
}

// RawItem is the transient tuple produced by the feed parser or the HTML
// extractor. It is consumed immediately by normalization and never
// persisted. Link may still be relative and RawContent may contain markup.
type RawItem struct {
	Title      string
	RawContent string
	Subtitle   string
	Link       string
	DateHints  []DateHint
}
