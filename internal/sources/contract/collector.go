package contract

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/errors"
	"github.com/agentstation/nftrecon/pkg/logging"
	"github.com/agentstation/nftrecon/pkg/tokens"
)

// Collector reads many collections one at a time.
type Collector struct {
	reader  Reader
	limiter *rate.Limiter
}

// NewCollector creates a Collector that waits at least delay between reads.
func NewCollector(reader Reader, delay time.Duration) *Collector {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Collector{reader: reader, limiter: limiter}
}

// Result holds the collections read successfully and the per-item failures.
type Result struct {
	Collections []tokens.Collection
	Failures    []*errors.ItemError
}

// Requested returns how many reads were attempted.
func (r Result) Requested() int {
	return len(r.Collections) + len(r.Failures)
}

// Collect reads every id in order. A failed read is logged and omitted,
// so it surfaces downstream as missing from the contract; it never stops
// the loop. Only context cancellation ends Collect early, returning what
// was read so far along with the context error.
func (c *Collector) Collect(ctx context.Context, ids []string) (Result, error) {
	log := logging.FromContext(ctx)

	result := Result{Collections: make([]tokens.Collection, 0, len(ids))}
	for _, id := range ids {
		if err := c.limiter.Wait(ctx); err != nil {
			return result, err
		}

		meta, err := c.reader.ReadCollection(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			itemErr := errors.NewItemError(constants.SideContract, id, err)
			result.Failures = append(result.Failures, itemErr)
			log.Warn().Err(err).Str("collection_id", id).Msg("Failed to read collection, skipping")
			continue
		}

		if meta.ID != "" && meta.ID != id {
			log.Debug().Str("collection_id", id).Str("returned_id", meta.ID).Msg("Contract returned a different id")
		}

		result.Collections = append(result.Collections, tokens.Collection{
			CollectionID: id,
			Name:         meta.Name,
			ArtistName:   meta.ArtistName,
			EditionCount: meta.EditionCount,
		})
	}

	log.Info().
		Int("requested", len(ids)).
		Int("read", len(result.Collections)).
		Int("failed", len(result.Failures)).
		Msg("Read contract collections")
	return result, nil
}
