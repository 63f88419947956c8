// Package searchidx holds the denormalized search documents, the MongoDB
// client that stores them, and the projector that keeps them eventually
// consistent with the membership store. The documents are never the system
// of record: queries that need permission truth re-validate against the
// relational store.
package searchidx

import (
	"github.com/dalemusser/waffle/pantry/text"

	"github.com/tripbook/tripbook/internal/domain/models"
)

// MemberDocument is the projected shape of a member. Trips holds the ids of
// trips the member belongs to (PENDING or ACCEPTED), treated as a set.
type MemberDocument struct {
	ID         string   `bson:"_id"`
	Nickname   string   `bson:"nickname"`
	NicknameCI string   `bson:"nickname_ci"`
	ProfileURL string   `bson:"profile_url"`
	Trips      []string `bson:"trips"`
	Version    int64    `bson:"version"`
}

// NewMemberDocument projects a member with an empty trips list.
func NewMemberDocument(m models.Member) MemberDocument {
	return MemberDocument{
		ID:         m.ID.String(),
		Nickname:   m.Nickname,
		NicknameCI: text.Fold(m.Nickname),
		ProfileURL: m.ProfileImagePath,
		Trips:      []string{},
	}
}

// AddTrip appends tripID unless already present. Returns true when the
// document changed, so redelivered events collapse to no-ops.
func (d *MemberDocument) AddTrip(tripID string) bool {
	for _, id := range d.Trips {
		if id == tripID {
			return false
		}
	}
	d.Trips = append(d.Trips, tripID)
	return true
}

// RemoveTrip removes the first entry matching tripID. An absent entry is a
// silent no-op.
func (d *MemberDocument) RemoveTrip(tripID string) bool {
	for i, id := range d.Trips {
		if id == tripID {
			d.Trips = append(d.Trips[:i], d.Trips[i+1:]...)
			return true
		}
	}
	return false
}

// HasTrip reports whether tripID is in the projected trips list.
func (d *MemberDocument) HasTrip(tripID string) bool {
	for _, id := range d.Trips {
		if id == tripID {
			return true
		}
	}
	return false
}

// LocationEntry is one named location inside a TripDocument.
type LocationEntry struct {
	Name   string `bson:"name"`
	NameCI string `bson:"name_ci"`
}

// TripDocument is the projected shape of a trip.
type TripDocument struct {
	ID            string          `bson:"_id"`
	Title         string          `bson:"title"`
	TitleCI       string          `bson:"title_ci"`
	Description   string          `bson:"description"`
	DescriptionCI string          `bson:"description_ci"`
	Private       bool            `bson:"private"`
	Locations     []LocationEntry `bson:"locations"`
	Version       int64           `bson:"version"`
}

// NewTripDocument projects a trip with an empty locations list.
func NewTripDocument(t models.Trip) TripDocument {
	return TripDocument{
		ID:            t.ID.String(),
		Title:         t.Title,
		TitleCI:       text.Fold(t.Title),
		Description:   t.Description,
		DescriptionCI: text.Fold(t.Description),
		Private:       t.Private,
		Locations:     []LocationEntry{},
	}
}

// AddLocation appends a location entry unless one with the same name is
// already present.
func (d *TripDocument) AddLocation(name string) bool {
	for _, loc := range d.Locations {
		if loc.Name == name {
			return false
		}
	}
	d.Locations = append(d.Locations, LocationEntry{Name: name, NameCI: text.Fold(name)})
	return true
}

// RemoveLocation removes the first entry whose name matches exactly.
func (d *TripDocument) RemoveLocation(name string) bool {
	for i, loc := range d.Locations {
		if loc.Name == name {
			d.Locations = append(d.Locations[:i], d.Locations[i+1:]...)
			return true
		}
	}
	return false
}
