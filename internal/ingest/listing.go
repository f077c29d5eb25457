package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/pkordes/rv-search/backend/internal/domain"
)

// ListingUpserter is the part of service.ListingService the ingestor needs.
type ListingUpserter interface {
	Upsert(ctx context.Context, rv domain.ListRV) (domain.ListRV, error)
}

// ListingHandler decodes ListRV documents from the feed and stores them.
type ListingHandler struct {
	listings ListingUpserter
	logger   *slog.Logger
}

// NewListingHandler constructs a ListingHandler.
func NewListingHandler(listings ListingUpserter, logger *slog.Logger) *ListingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingHandler{listings: listings, logger: logger}
}

// Handle upserts the listing carried by msg. When the document has no Id the
// message key is used instead.
//
// Messages that can never succeed (bad JSON, validation failures) are logged
// and acknowledged so they do not block the partition. Any other error is
// returned and the message stays unmarked.
func (h *ListingHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var rv domain.ListRV
	if err := json.Unmarshal(msg.Value, &rv); err != nil {
		h.logger.WarnContext(ctx, "ingest: dropping malformed listing",
			"topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if rv.Id == "" && len(msg.Key) > 0 {
		rv.Id = string(msg.Key)
	}

	stored, err := h.listings.Upsert(ctx, rv)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.logger.WarnContext(ctx, "ingest: dropping invalid listing",
				"topic", msg.Topic, "offset", msg.Offset, "rv_id", rv.Id, "error", err)
			return nil
		}
		return fmt.Errorf("ingest.ListingHandler.Handle: %w", err)
	}

	h.logger.DebugContext(ctx, "ingest: listing stored", "rv_id", stored.Id, "photos", len(stored.Photos))
	return nil
}

var _ MessageHandler = (*ListingHandler)(nil)
