package programs

import (
	"context"
	"errors"
	"time"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/metrics"
	"eligibility-workers/internal/eligibility/matcher"
	"eligibility-workers/internal/eligibility/versioning"
	"eligibility-workers/internal/models"
)

// Repository resolves the candidates for an evaluation, reading through the
// cache when one is configured.
type Repository struct {
	store  Store
	cache  *Cache
	logger logger.Logger
	now    func() time.Time
}

// NewRepository builds a repository. cache may be nil.
func NewRepository(store Store, cache *Cache, log logger.Logger) *Repository {
	return &Repository{
		store:  store,
		cache:  cache,
		logger: log,
		now:    time.Now,
	}
}

// Snapshot returns the jurisdiction's programs and rule history. Cache
// failures are logged and fall through to the store.
func (r *Repository) Snapshot(ctx context.Context, jurisdiction string, at time.Time) (Snapshot, error) {
	year := at.Year()

	if r.cache != nil {
		snap, err := r.cache.Get(ctx, jurisdiction, year)
		switch {
		case err != nil:
			metrics.CandidateCache.WithLabelValues(metrics.CacheError).Inc()
			r.logger.Warn("candidate cache read failed", map[string]interface{}{
				"jurisdiction": jurisdiction,
				"error":        err.Error(),
			})
		case snap != nil:
			metrics.CandidateCache.WithLabelValues(metrics.CacheHit).Inc()
			return *snap, nil
		default:
			metrics.CandidateCache.WithLabelValues(metrics.CacheMiss).Inc()
		}
	}

	snap, err := loadSnapshot(ctx, r.store, jurisdiction, r.now())
	if err != nil {
		return Snapshot{}, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, snap, year); err != nil {
			r.logger.Warn("candidate cache write failed", map[string]interface{}{
				"jurisdiction": jurisdiction,
				"error":        err.Error(),
			})
		}
	}
	return snap, nil
}

// ActiveCandidates pairs each program with its single rule in force at at.
// Programs without a rule in force are skipped. Overlapping rules fail the
// call since picking one would be arbitrary.
func (r *Repository) ActiveCandidates(ctx context.Context, jurisdiction string, at time.Time) ([]matcher.Candidate, error) {
	snap, err := r.Snapshot(ctx, jurisdiction, at)
	if err != nil {
		return nil, err
	}
	return Resolve(snap, at, r.logger)
}

// Resolve picks the rule in force for every program of snap.
func Resolve(snap Snapshot, at time.Time, log logger.Logger) ([]matcher.Candidate, error) {
	byProgram := make(map[string][]models.ProgramRule, len(snap.Programs))
	for _, rule := range snap.Rules {
		byProgram[rule.ProgramID] = append(byProgram[rule.ProgramID], rule)
	}

	candidates := make([]matcher.Candidate, 0, len(snap.Programs))
	for _, p := range snap.Programs {
		rule, err := versioning.Resolve(byProgram[p.ProgramID], p.ProgramID, at)
		if errors.Is(err, versioning.ErrNoActiveRule) {
			log.Warn("no rule in force, skipping program", map[string]interface{}{
				"jurisdiction": p.Jurisdiction,
				"programId":    p.ProgramID,
				"at":           at.Format(time.RFC3339),
			})
			continue
		}
		if err != nil {
			return nil, apperrors.NewAmbiguousActiveRuleError(err).
				WithMetadata("programId", p.ProgramID)
		}
		candidates = append(candidates, matcher.Candidate{Program: p, Rule: rule})
	}
	return candidates, nil
}

// Invalidate drops cached snapshots. It is a no-op without a cache.
func (r *Repository) Invalidate(ctx context.Context, jurisdiction string) (int, error) {
	if r.cache == nil {
		return 0, nil
	}
	n, err := r.cache.Invalidate(ctx, jurisdiction)
	if err != nil {
		return n, apperrors.NewCacheUnavailableError(err)
	}
	return n, nil
}
