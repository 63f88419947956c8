// internal/searchidx/projector.go
package searchidx

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/domain/events"
)

// casRetries bounds how many times a read-modify-write is reapplied after
// losing a version race to a concurrent handler.
const casRetries = 3

// Projector translates domain events into read-modify-write updates against
// the search index. One handling path per event type; every mutation is
// idempotent (set-semantics append, first-match remove), so redelivery of
// an event converges to the same documents.
type Projector struct {
	idx Index
	log *zap.Logger
}

// NewProjector creates a Projector over the index client.
func NewProjector(idx Index, logger *zap.Logger) *Projector {
	return &Projector{idx: idx, log: logger}
}

// HandleEvent dispatches e to its handler. It implements domainevent.Handler.
func (p *Projector) HandleEvent(ctx context.Context, e events.Event) error {
	switch evt := e.(type) {
	case events.MemberRegisterEvent:
		return p.memberRegistered(ctx, evt)
	case events.TripCreateEvent:
		return p.tripCreated(ctx, evt)
	case events.TripUpdateEvent:
		return p.tripUpdated(ctx, evt)
	case events.TripInviteEvent:
		return p.membersJoined(ctx, evt.TripID.String(), uuidStrings(evt.ParticipantIDs))
	case events.TripKickOutEvent:
		return p.memberKickedOut(ctx, evt)
	case events.LocationAddEvent:
		return p.locationChanged(ctx, evt.TripID.String(), evt.LocationName, true)
	case events.LocationRemoveEvent:
		return p.locationChanged(ctx, evt.TripID.String(), evt.LocationName, false)
	default:
		p.log.Warn("unknown domain event", zap.String("event", e.Name()))
		return nil
	}
}

func (p *Projector) memberRegistered(ctx context.Context, evt events.MemberRegisterEvent) error {
	// Redelivery guard: never clobber a document that already carries trips.
	_, err := p.idx.FindMember(ctx, evt.Member.ID.String())
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrDocNotFound) {
		return fmt.Errorf("member register projection: %w", err)
	}
	doc := NewMemberDocument(evt.Member)
	if err := p.idx.UpsertMember(ctx, doc); err != nil && !errors.Is(err, ErrVersionConflict) {
		return fmt.Errorf("member register projection: %w", err)
	}
	return nil
}

func (p *Projector) tripCreated(ctx context.Context, evt events.TripCreateEvent) error {
	// Redelivery guard: an existing document keeps whatever locations have
	// accumulated since the first delivery.
	_, err := p.idx.FindTrip(ctx, evt.Trip.ID.String())
	if errors.Is(err, ErrDocNotFound) {
		doc := NewTripDocument(evt.Trip)
		if err := p.idx.UpsertTrip(ctx, doc); err != nil && !errors.Is(err, ErrVersionConflict) {
			return fmt.Errorf("trip create projection: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("trip create projection: %w", err)
	}
	return p.membersJoined(ctx, evt.Trip.ID.String(), uuidStrings(evt.ParticipantIDs))
}

// tripUpdated refreshes the projected title, description, and privacy flag
// while keeping the accumulated locations list.
func (p *Projector) tripUpdated(ctx context.Context, evt events.TripUpdateEvent) error {
	tripID := evt.Trip.ID.String()
	for attempt := 0; ; attempt++ {
		doc, err := p.idx.FindTrip(ctx, tripID)
		if errors.Is(err, ErrDocNotFound) {
			doc = NewTripDocument(evt.Trip)
		} else if err != nil {
			return fmt.Errorf("fetch trip document: %w", err)
		} else {
			fresh := NewTripDocument(evt.Trip)
			fresh.Locations = doc.Locations
			fresh.Version = doc.Version
			doc = fresh
		}
		err = p.idx.UpsertTrip(ctx, doc)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= casRetries {
			return fmt.Errorf("upsert trip document: %w", err)
		}
	}
}

// membersJoined appends tripID to each member document and bulk-upserts the
// touched documents in one batch. A member whose document is missing (its
// register event was lost) gets a skeleton document so the membership fact
// is not dropped.
func (p *Projector) membersJoined(ctx context.Context, tripID string, memberIDs []string) error {
	for attempt := 0; ; attempt++ {
		docs, err := p.idx.FindMembersByIDIn(ctx, memberIDs)
		if err != nil {
			return fmt.Errorf("fetch member documents: %w", err)
		}
		byID := make(map[string]MemberDocument, len(docs))
		for _, d := range docs {
			byID[d.ID] = d
		}

		var touched []MemberDocument
		for _, id := range memberIDs {
			doc, ok := byID[id]
			if !ok {
				p.log.Warn("member document missing, creating skeleton",
					zap.String("member_id", id))
				doc = MemberDocument{ID: id, Trips: []string{}}
			}
			if doc.AddTrip(tripID) || !ok {
				touched = append(touched, doc)
			}
		}
		if len(touched) == 0 {
			return nil
		}

		err = p.idx.BulkUpsertMembers(ctx, touched)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= casRetries {
			return fmt.Errorf("bulk upsert member documents: %w", err)
		}
	}
}

func (p *Projector) memberKickedOut(ctx context.Context, evt events.TripKickOutEvent) error {
	memberID := evt.MemberID.String()
	tripID := evt.TripID.String()
	for attempt := 0; ; attempt++ {
		doc, err := p.idx.FindMember(ctx, memberID)
		if errors.Is(err, ErrDocNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch member document: %w", err)
		}
		if !doc.RemoveTrip(tripID) {
			return nil
		}
		err = p.idx.BulkUpsertMembers(ctx, []MemberDocument{doc})
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= casRetries {
			return fmt.Errorf("upsert member document: %w", err)
		}
	}
}

func (p *Projector) locationChanged(ctx context.Context, tripID, name string, add bool) error {
	for attempt := 0; ; attempt++ {
		doc, err := p.idx.FindTrip(ctx, tripID)
		if errors.Is(err, ErrDocNotFound) {
			p.log.Warn("trip document missing for location change",
				zap.String("trip_id", tripID))
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch trip document: %w", err)
		}
		var changed bool
		if add {
			changed = doc.AddLocation(name)
		} else {
			changed = doc.RemoveLocation(name)
		}
		if !changed {
			return nil
		}
		err = p.idx.UpsertTrip(ctx, doc)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= casRetries {
			return fmt.Errorf("upsert trip document: %w", err)
		}
	}
}

func uuidStrings[T fmt.Stringer](ids []T) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
