// Package refdata merges issuer names into assembled records from an
// external reference CSV. Entirely optional: any failure degrades to records
// without issuer names.
package refdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"bondcheck/internal/models"
	"bondcheck/pkg/utils"
)

// EmitterDirectory maps an emitter id to an issuer name.
type EmitterDirectory map[string]string

type emitterRow struct {
	Issuer    string `csv:"Issuer"`
	EmitterID string `csv:"EMITTER_ID"`
}

// Fetch downloads the emitter reference CSV with a bounded retry.
func Fetch(ctx context.Context, url string, logger zerolog.Logger) (EmitterDirectory, error) {
	return utils.RetryWithResult(ctx, utils.DefaultRetryConfig(), func() (EmitterDirectory, error) {
		dir, err := fetchOnce(ctx, url)
		if err != nil {
			logger.Debug().Err(err).Msg("Emitter reference fetch failed")
		}
		return dir, err
	})
}

func fetchOnce(ctx context.Context, url string) (EmitterDirectory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("emitter reference: status %d", resp.StatusCode)
	}

	var rows []emitterRow
	if err := gocsv.Unmarshal(resp.Body, &rows); err != nil {
		return nil, fmt.Errorf("emitter reference: %w", err)
	}

	dir := make(EmitterDirectory, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(row.EmitterID)
		if id != "" && row.Issuer != "" {
			dir[id] = strings.TrimSpace(row.Issuer)
		}
	}
	return dir, nil
}

// Annotate fills the Issuer field of each record whose emitter id is known.
func (d EmitterDirectory) Annotate(records []models.SecurityRecord) {
	for i := range records {
		if name, ok := d[records[i].EmitterID]; ok {
			records[i].Issuer = name
		}
	}
}
