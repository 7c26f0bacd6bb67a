// Package resolve implements the identifier resolution and annotation core:
// metadata lookup with a search fallback, coupon-schedule reduction, and
// assembly of the final per-identifier record.
package resolve

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	apperrors "bondcheck/internal/errors"
	"bondcheck/internal/iss"
	"bondcheck/internal/logging"
	"bondcheck/internal/models"
)

// Provider is the slice of the ISS client the core depends on.
type Provider interface {
	Security(ctx context.Context, code string) (iss.Table, error)
	Search(ctx context.Context, query string) (iss.Table, error)
	Bondization(ctx context.Context, code string) (iss.BondizationResult, error)
}

// state tags one step of the per-identifier lookup state machine:
// pending → tried primary → {resolved | tried fallback search → {resolved | not found}}.
type state int

const (
	statePending state = iota
	stateTriedPrimary
	stateTriedFallbackSearch
	stateResolved
	stateNotFound
)

// resolution is the tagged result of one resolution attempt.
type resolution struct {
	state    state
	security models.ResolvedSecurity
	err      error // set only for hard provider failures
}

// Resolver resolves one identifier to instrument metadata via a primary
// lookup and a secondary fallback search.
type Resolver struct {
	provider Provider
	logger   zerolog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(provider Provider, logger zerolog.Logger) *Resolver {
	return &Resolver{provider: provider, logger: logger}
}

// Resolve resolves an identifier to instrument metadata. It returns
// errors.ErrSecurityNotFound when neither lookup stage succeeds, or a
// ProviderError when the metadata endpoint rejects the resolved fallback
// code. Transport faults never escape: they degrade to not-found.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (models.ResolvedSecurity, error) {
	identifier = strings.ToUpper(strings.TrimSpace(identifier))

	res := r.run(ctx, identifier)
	switch res.state {
	case stateResolved:
		logging.LogResolve(r.logger, identifier, resolvePath(res.security), true)
		return res.security, nil
	case stateNotFound:
		if res.err != nil {
			return models.ResolvedSecurity{}, res.err
		}
		logging.LogResolve(r.logger, identifier, "none", false)
		return models.ResolvedSecurity{}, apperrors.ErrSecurityNotFound
	default:
		return models.ResolvedSecurity{}, apperrors.ErrSecurityNotFound
	}
}

func resolvePath(sec models.ResolvedSecurity) string {
	if sec.SecondaryCode != "" {
		return "fallback"
	}
	return "primary"
}

// run walks the lookup state machine for one identifier and returns a tagged
// result. It performs at most three network calls.
func (r *Resolver) run(ctx context.Context, identifier string) resolution {
	res := resolution{state: statePending}

	// Primary: metadata straight from the identifier. Transport faults and
	// non-2xx responses both count as "did not succeed" here and divert to
	// the fallback search.
	table, err := r.provider.Security(ctx, identifier)
	res.state = stateTriedPrimary
	if err == nil && !table.Empty() {
		res.state = stateResolved
		res.security = parseSecurity(identifier, table.Row(0))
		return res
	}

	// Fallback: free-text search, keep the first candidate tradable on the
	// standard bond board.
	candidates, err := r.provider.Search(ctx, identifier)
	res.state = stateTriedFallbackSearch
	if err != nil {
		return res.notFound(nil)
	}
	secondary, emitterID := selectBondBoardCandidate(candidates)
	if secondary == "" {
		return res.notFound(nil)
	}

	// Re-issue the metadata query with the discovered code. A provider
	// rejection here is a hard failure for this identifier; a transport
	// fault or an empty data set is not-found.
	table, err = r.provider.Security(ctx, secondary)
	if err != nil {
		if apperrors.IsProviderError(err) {
			return res.notFound(err)
		}
		return res.notFound(nil)
	}
	if table.Empty() {
		return res.notFound(nil)
	}

	res.state = stateResolved
	res.security = parseSecurity(identifier, table.Row(0))
	res.security.SecondaryCode = secondary
	if res.security.EmitterID == "" {
		res.security.EmitterID = emitterID
	}
	return res
}

func (res resolution) notFound(err error) resolution {
	res.state = stateNotFound
	res.err = err
	return res
}

// parseSecurity maps a metadata row to a ResolvedSecurity by column name.
func parseSecurity(identifier string, row iss.Row) models.ResolvedSecurity {
	return models.ResolvedSecurity{
		ISIN:         identifier,
		Name:         row.FirstString("SECNAME", "SEC_NAME", "SHORTNAME"),
		EmitterID:    row.FirstString("EMITTER_ID", "EMITTERID"),
		MaturityDate: row.Date("MATDATE"),
		PutDate:      row.Date("PUTOPTIONDATE"),
		CallDate:     row.Date("CALLOPTIONDATE"),
	}
}

// selectBondBoardCandidate picks the first search row whose primary board is
// the standard corporate-bond board and returns its canonical code.
func selectBondBoardCandidate(candidates iss.Table) (secid, emitterID string) {
	for i := 0; i < candidates.Len(); i++ {
		row := candidates.Row(i)
		board := models.Board(row.FirstString("PRIMARY_BOARDID", "BOARDID"))
		if board != models.BoardTQCB {
			continue
		}
		if code := row.String("SECID"); code != "" {
			return code, row.FirstString("EMITTER_ID", "EMITTERID")
		}
	}
	return "", ""
}
