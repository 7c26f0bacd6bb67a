package resolve

import (
	"context"

	"github.com/rs/zerolog"

	"bondcheck/internal/models"
)

// Assembler merges resolver and extractor output into one normalized record
// per identifier.
type Assembler struct {
	resolver  *Resolver
	extractor *Extractor
	logger    zerolog.Logger
}

// NewAssembler creates an Assembler over one provider.
func NewAssembler(provider Provider, logger zerolog.Logger) *Assembler {
	return &Assembler{
		resolver:  NewResolver(provider, logger),
		extractor: NewExtractor(provider, logger),
		logger:    logger,
	}
}

// Assemble resolves the identifier and, on success, fetches its next coupon
// dates. The coupon lookup always uses the original identifier regardless of
// which code path resolved the metadata, and the returned record is tagged
// with the original identifier too.
func (a *Assembler) Assemble(ctx context.Context, identifier string) (models.SecurityRecord, error) {
	sec, err := a.resolver.Resolve(ctx, identifier)
	if err != nil {
		return models.SecurityRecord{}, err
	}

	dates, err := a.extractor.NextDates(ctx, sec.ISIN)
	if err != nil {
		return models.SecurityRecord{}, err
	}

	return models.SecurityRecord{
		ISIN:           sec.ISIN,
		SecondaryCode:  sec.SecondaryCode,
		EmitterID:      sec.EmitterID,
		Name:           sec.Name,
		MaturityDate:   sec.MaturityDate,
		PutDate:        sec.PutDate,
		CallDate:       sec.CallDate,
		NextRecordDate: dates.RecordDate,
		NextCouponDate: dates.CouponDate,
		FaceUnit:       dates.FaceUnit,
		CouponValue:    dates.CouponValue,
	}, nil
}
