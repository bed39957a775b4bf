package gifts

import (
	"context"
	"log"

	"github.com/m-mizutani/goerr/v2"
)

// RevealSweep finds every capsule whose reveal time has passed, flips it
// to revealed and fans the reveal out. Run from a fixed-interval
// scheduler; a capsule that fails here stays due and is retried on the
// next sweep, so no reveal is ever skipped permanently.
func (s *Service) RevealSweep(ctx context.Context) error {
	due, err := s.store.DueCapsules(ctx, s.now().UTC())
	if err != nil {
		return goerr.Wrap(err, "failed to query due capsules")
	}

	for _, reveal := range due {
		capsule := reveal.Capsule

		// Conditional update: only one of two racing sweeps wins.
		claimed, err := s.store.MarkRevealed(ctx, capsule.ID)
		if err != nil {
			log.Printf("Failed to mark capsule %s revealed: %v\n", capsule.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		event := RevealEvent{
			Type:   "gift_revealed",
			GiftID: capsule.ID,
			From:   reveal.FromUsername,
			To:     reveal.ToUsername,
			Discovery: RevealDiscovery{
				Title:   reveal.Discovery.Title,
				URL:     reveal.Discovery.URL,
				Snippet: reveal.Discovery.Snippet,
			},
			Message:    capsule.Message,
			WrappedAt:  capsule.CreatedAt,
			RevealedAt: s.now().UTC(),
		}

		if err := s.notifier.Publish(ctx, revealedChannel(capsule.RecipientID), event); err != nil {
			log.Printf("Failed to publish reveal of %s: %v\n", capsule.ID, err)
		}
		if err := s.notifier.PushInbox(ctx, inboxKey(capsule.RecipientID), event); err != nil {
			log.Printf("Failed to push reveal of %s to inbox: %v\n", capsule.ID, err)
		}

		// Drop the pre-reveal artifacts; both calls are idempotent.
		if err := s.cache.ZRem(ctx, pendingKey(capsule.RecipientID), capsule.ID.String()); err != nil {
			log.Printf("Failed to unindex pending gift %s: %v\n", capsule.ID, err)
		}
		if err := s.cache.Del(ctx, wrappedKey(capsule.ID)); err != nil {
			log.Printf("Failed to drop wrapped cache for %s: %v\n", capsule.ID, err)
		}

		log.Printf("Gift revealed: %s from %s to %s\n", capsule.ID, reveal.FromUsername, reveal.ToUsername)
	}

	return nil
}
