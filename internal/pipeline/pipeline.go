// Package pipeline drives record assembly over an ordered identifier list in
// two passes.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"bondcheck/internal/logging"
	"bondcheck/internal/models"
)

// RecordAssembler assembles one identifier into a record.
type RecordAssembler interface {
	Assemble(ctx context.Context, identifier string) (models.SecurityRecord, error)
}

// ProgressFunc receives completion counts after each identifier of the first
// pass. completed/total is monotonically increasing.
type ProgressFunc func(completed, total int)

// Pipeline runs batches sequentially: one identifier at a time, in input
// order, so progress reporting and the retry set stay deterministic.
type Pipeline struct {
	assembler RecordAssembler
	logger    zerolog.Logger
	progress  ProgressFunc
}

// New creates a Pipeline.
func New(assembler RecordAssembler, logger zerolog.Logger) *Pipeline {
	return &Pipeline{assembler: assembler, logger: logger}
}

// OnProgress registers a progress callback for the first pass.
func (p *Pipeline) OnProgress(fn ProgressFunc) {
	p.progress = fn
}

// Run assembles every identifier in two passes. Identifiers are deduplicated
// by first occurrence before the first pass. Failures from pass one are
// retried once in pass two, which gives the resolver's fallback path a fresh
// attempt at transient faults; what still fails becomes Unresolved. Every
// input identifier ends up in exactly one of Records or Unresolved.
func (p *Pipeline) Run(ctx context.Context, identifiers []string) models.BatchResult {
	ids := Dedupe(identifiers)
	total := len(ids)
	start := time.Now()

	var result models.BatchResult
	var pending []string

	for i, id := range ids {
		record, err := p.assembler.Assemble(ctx, id)
		if err != nil {
			p.logger.Debug().Str("isin", id).Err(err).Msg("Pass 1 failure, queued for retry")
			pending = append(pending, id)
		} else {
			result.Records = append(result.Records, record)
		}
		if p.progress != nil {
			p.progress(i+1, total)
		}
	}

	for _, id := range pending {
		record, err := p.assembler.Assemble(ctx, id)
		if err != nil {
			p.logger.Debug().Str("isin", id).Err(err).Msg("Pass 2 failure, unresolved")
			result.Unresolved = append(result.Unresolved, id)
			continue
		}
		result.Records = append(result.Records, record)
	}

	logging.LogBatch(p.logger, total, len(result.Records), len(result.Unresolved), time.Since(start))
	return result
}

// Dedupe folds duplicate identifiers, keeping first-occurrence order.
func Dedupe(identifiers []string) []string {
	seen := make(map[string]struct{}, len(identifiers))
	var out []string
	for _, id := range identifiers {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
