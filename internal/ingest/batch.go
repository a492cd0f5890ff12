// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/shoreline/pkg/types"
)

// Fetcher retrieves records for at most one batch of PMIDs per call.
type Fetcher interface {
	Fetch(ctx context.Context, pmids []string) ([]types.Record, error)
}

// BatchResult holds the outcome of a batched fetch.
type BatchResult struct {
	// Records maps each successfully fetched PMID to its record.
	Records map[string]types.Record

	// Failures lists requested PMIDs with no record, in request order:
	// every PMID of a failed batch plus any the service silently dropped.
	Failures []string

	// Batches is the number of fetch calls issued.
	Batches int
}

// FetchBatches splits pmids into chunks of batchSize and fetches them in
// order. A failed chunk marks all of its PMIDs as failures and the
// remaining chunks still run. Rate limiting is the Fetcher's concern.
func FetchBatches(ctx context.Context, f Fetcher, pmids []string, batchSize int, log zerolog.Logger, progress types.ProgressFunc) BatchResult {
	if batchSize <= 0 {
		batchSize = types.DefaultBatchSize
	}
	res := BatchResult{Records: make(map[string]types.Record, len(pmids))}

	for start := 0; start < len(pmids); start += batchSize {
		end := min(start+batchSize, len(pmids))
		batch := pmids[start:end]
		res.Batches++

		if progress != nil {
			progress(types.Progress{
				Phase:   types.PhaseFetch,
				Message: fmt.Sprintf("Fetching papers %d-%d of %d...", start+1, end, len(pmids)),
				Current: end,
				Total:   len(pmids),
			})
		}

		records, err := f.Fetch(ctx, batch)
		if err != nil {
			log.Warn().Err(err).Strs("pmids", batch).Msg("batch fetch failed")
			res.Failures = append(res.Failures, batch...)
			continue
		}

		requested := make(map[string]bool, len(batch))
		for _, id := range batch {
			requested[id] = true
		}
		for _, r := range records {
			if requested[r.PMID] {
				res.Records[r.PMID] = r
			}
		}
		for _, id := range batch {
			if _, ok := res.Records[id]; !ok {
				log.Debug().Str("pmid", id).Msg("pmid missing from fetch response")
				res.Failures = append(res.Failures, id)
			}
		}
	}
	return res
}
