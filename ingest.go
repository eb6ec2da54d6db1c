package feedmill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nkemp/feedmill/sources"
)

// ArticleStore is the persistence surface the pipeline needs. The sqlite
// implementation lives in the artstore package; tests substitute an
// in-memory map.
type ArticleStore interface {
	// InsertIfAbsent stores the article unless one with the same title and
	// source already exists. The second return is true when a row was
	// inserted.
	InsertIfAbsent(a Article) (uuid.UUID, bool, error)
	// ListBySource returns the stored articles for one source, newest
	// first.
	ListBySource(sourceID uuid.UUID) ([]Article, error)
	// DeleteOlderThan removes articles published before the cutoff. It
	// returns how many were deleted and how many were examined.
	DeleteOlderThan(cutoff time.Time) (deleted, checked int, err error)
}

// RunResult summarizes one ingestion run for one source.
type RunResult struct {
	Added      int
	Duplicates int
	TotalSeen  int
	Diag       Diagnostics
}

// PurgeResult summarizes one retention purge.
type PurgeResult struct {
	DeletedCount int
	TotalChecked int
}

// Pipeline wires fetching, parsing, normalization, deduplication and
// storage into per-source ingestion runs.
type Pipeline struct {
	Fetcher   Fetcher
	Store     ArticleStore
	Extractor *Extractor
	Log       *slog.Logger
	Now       func() time.Time
}

// NewPipeline builds a pipeline around the given fetcher and store.
func NewPipeline(fetcher Fetcher, store ArticleStore, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Fetcher:   fetcher,
		Store:     store,
		Extractor: NewExtractor(),
		Log:       log,
		Now:       time.Now,
	}
}

// RunIngestionForSource fetches one source and carries its items through
// the whole pipeline. Per-item problems are recorded as diagnostics and
// never abort the run; only transport and parse failures return an error,
// and then nothing from the batch is stored.
func (p *Pipeline) RunIngestionForSource(ctx context.Context, src sources.Source) (RunResult, error) {
	var result RunResult

	payload, err := p.Fetcher.Fetch(ctx, src.Address)
	if err != nil {
		return result, fmt.Errorf("failed to fetch source %s: %w", src.Name, err)
	}

	var raws []RawItem
	switch src.Kind {
	case sources.KindFeed:
		parsed, err := ParseFeed(string(payload))
		if err != nil {
			return result, fmt.Errorf("failed to parse source %s: %w", src.Name, err)
		}
		raws = parsed.Items
		for i := 0; i < parsed.Skipped; i++ {
			result.Diag.Record(ReasonEmptyItem, "", "")
		}
		result.TotalSeen = len(parsed.Items) + parsed.Skipped
	case sources.KindHTML:
		raws, err = p.Extractor.Extract(string(payload), src.Address, src.HTMLSelectors)
		if err != nil {
			return result, fmt.Errorf("failed to extract from source %s: %w", src.Name, err)
		}
		result.TotalSeen = len(raws)
	default:
		return result, fmt.Errorf("%w: %q", sources.ErrInvalidKind, src.Kind)
	}

	now := p.Now()
	horizonCutoff := now.Add(-RetentionHorizon)

	var cands []Candidate
	for _, raw := range raws {
		title := CleanTitle(raw.Title)

		address, err := ResolveURL(raw.Link, src.Address)
		if err != nil {
			reason := ReasonRejectedURL
			if errors.Is(err, ErrSelfReferentialURL) {
				reason = ReasonSelfReferenceURL
			}
			result.Diag.Record(reason, title, raw.Link)
			continue
		}

		content := CleanText(raw.RawContent)
		if content == "" {
			content = title
		}
		if title == "" {
			if content == "" {
				result.Diag.Record(ReasonEmptyItem, "", address)
				continue
			}
			title = "(No title)"
		}

		pubDate, inferred := ResolveDate(raw.DateHints, now)
		if inferred {
			result.Diag.Record(ReasonInferredDate, title, address)
			if len(raw.DateHints) > 0 {
				result.Diag.Record(ReasonImplausibleDate, title, address)
			}
		}
		if pubDate.Before(horizonCutoff) {
			result.Diag.Record(ReasonBeyondHorizon, title, address)
			continue
		}

		cands = append(cands, Candidate{
			Article: Article{
				ID:              uuid.New(),
				Title:           title,
				Content:         content,
				OriginalAddress: address,
				PublicationDate: pubDate,
				SourceID:        src.ID,
				SourceName:      src.Name,
			},
			Subtitle: CleanText(raw.Subtitle),
		})
	}

	before := len(cands)
	cands = Dedupe(cands, &result.Diag)
	result.Duplicates += before - len(cands)

	// Pre-check against what is already stored for this source, so reruns
	// do not depend on the insert-time uniqueness constraint alone.
	stored, err := p.Store.ListBySource(src.ID)
	if err != nil {
		return result, fmt.Errorf("failed to list stored articles for %s: %w", src.Name, err)
	}
	storedTitles := make(map[string]bool, len(stored))
	storedURLs := make(map[string]bool, len(stored))
	for _, a := range stored {
		storedTitles[normalizeKey(a.Title, titleKeyLen)] = true
		storedURLs[urlKey(a.OriginalAddress)] = true
	}

	for _, cand := range cands {
		if storedTitles[normalizeKey(cand.Article.Title, titleKeyLen)] ||
			storedURLs[urlKey(cand.Article.OriginalAddress)] {
			result.Duplicates++
			result.Diag.Record(ReasonDuplicateStored, cand.Article.Title, cand.Article.OriginalAddress)
			continue
		}

		_, inserted, err := p.Store.InsertIfAbsent(cand.Article)
		if err != nil {
			return result, fmt.Errorf("failed to store article %q: %w", cand.Article.Title, err)
		}
		if inserted {
			result.Added++
			result.Diag.Record(ReasonAccepted, cand.Article.Title, cand.Article.OriginalAddress)
		} else {
			result.Duplicates++
			result.Diag.Record(ReasonDuplicateStored, cand.Article.Title, cand.Article.OriginalAddress)
		}
	}

	p.Log.Info("ingestion run finished",
		"source", src.Name,
		"seen", result.TotalSeen,
		"added", result.Added,
		"duplicates", result.Duplicates,
	)
	return result, nil
}

// PurgeOlderThan deletes stored articles published before now minus the
// horizon.
func (p *Pipeline) PurgeOlderThan(horizon time.Duration) (PurgeResult, error) {
	cutoff := p.Now().Add(-horizon)
	deleted, checked, err := p.Store.DeleteOlderThan(cutoff)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("failed to purge articles: %w", err)
	}
	if deleted > 0 {
		p.Log.Info("purged articles beyond retention horizon",
			"deleted", deleted, "checked", checked, "cutoff", cutoff)
	}
	return PurgeResult{DeletedCount: deleted, TotalChecked: checked}, nil
}
