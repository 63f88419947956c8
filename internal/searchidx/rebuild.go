// internal/searchidx/rebuild.go
package searchidx

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/domain/models"
)

// rebuildBatchSize controls how many relational rows are projected per
// bulk upsert during a rebuild.
const rebuildBatchSize = 200

// MemberSource streams members out of the membership store.
type MemberSource interface {
	ListAll(ctx context.Context, batchSize int, fn func([]models.Member) error) error
}

// TripSource streams trips out of the membership store.
type TripSource interface {
	ListAll(ctx context.Context, batchSize int, fn func([]models.Trip) error) error
}

// ParticipationSource lists the trips a member belongs to.
type ParticipationSource interface {
	ListTripIDsByMember(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error)
}

// LocationSource lists a trip's locations in creation order.
type LocationSource interface {
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Location, error)
}

// Rebuilder repopulates the search index from the membership store. It is
// the out-of-band recovery path for projection drift: lost events leave the
// index stale, and a rebuild replaces every document with a fresh
// projection of relational truth.
type Rebuilder struct {
	members      MemberSource
	trips        TripSource
	participants ParticipationSource
	locations    LocationSource
	idx          Index
	log          *zap.Logger
}

// NewRebuilder wires a Rebuilder over the relational stores and the index.
func NewRebuilder(members MemberSource, trips TripSource, participants ParticipationSource, locations LocationSource, idx Index, logger *zap.Logger) *Rebuilder {
	return &Rebuilder{
		members:      members,
		trips:        trips,
		participants: participants,
		locations:    locations,
		idx:          idx,
		log:          logger,
	}
}

// Rebuild projects every member and trip into the index. Existing documents
// are replaced regardless of version; the rebuild is the authority.
func (r *Rebuilder) Rebuild(ctx context.Context) error {
	var memberCount, tripCount int

	err := r.members.ListAll(ctx, rebuildBatchSize, func(batch []models.Member) error {
		docs := make([]MemberDocument, 0, len(batch))
		for _, m := range batch {
			doc := NewMemberDocument(m)
			tripIDs, err := r.participants.ListTripIDsByMember(ctx, m.ID)
			if err != nil {
				return fmt.Errorf("list trips for member %s: %w", m.ID, err)
			}
			for _, id := range tripIDs {
				doc.AddTrip(id.String())
			}
			doc.Version = r.currentVersion(ctx, doc.ID, true)
			docs = append(docs, doc)
		}
		memberCount += len(docs)
		return r.idx.BulkUpsertMembers(ctx, docs)
	})
	if err != nil {
		return fmt.Errorf("rebuild member documents: %w", err)
	}

	err = r.trips.ListAll(ctx, rebuildBatchSize, func(batch []models.Trip) error {
		docs := make([]TripDocument, 0, len(batch))
		for _, t := range batch {
			doc := NewTripDocument(t)
			locs, err := r.locations.ListByTrip(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("list locations for trip %s: %w", t.ID, err)
			}
			for _, loc := range locs {
				doc.AddLocation(loc.Name)
			}
			doc.Version = r.currentVersion(ctx, doc.ID, false)
			docs = append(docs, doc)
		}
		tripCount += len(docs)
		return r.idx.BulkUpsertTrips(ctx, docs)
	})
	if err != nil {
		return fmt.Errorf("rebuild trip documents: %w", err)
	}

	r.log.Info("search index rebuilt",
		zap.Int("members", memberCount),
		zap.Int("trips", tripCount))
	return nil
}

// currentVersion reads the stored version so the replacement upsert matches
// the live document. A missing document rebuilds as a fresh insert.
func (r *Rebuilder) currentVersion(ctx context.Context, id string, member bool) int64 {
	if member {
		if doc, err := r.idx.FindMember(ctx, id); err == nil {
			return doc.Version
		}
		return 0
	}
	if doc, err := r.idx.FindTrip(ctx, id); err == nil {
		return doc.Version
	}
	return 0
}
