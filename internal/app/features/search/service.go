// Package search is the hybrid query layer: keyword matches come from the
// search index, while everything permission- or ranking-shaped is resolved
// against the relational store before results go out. The index is advisory
// and may lag writes by the projection delay; it is never the sole source
// of permission truth.
package search

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/searchidx"
)

// Searcher is the read surface of the search index this layer uses.
type Searcher interface {
	SearchPublicTrips(ctx context.Context, keyword string, limit int) ([]searchidx.TripDocument, error)
	SearchPublicTripsByLocation(ctx context.Context, keyword string, limit int) ([]searchidx.TripDocument, error)
	SearchMembersByNickname(ctx context.Context, keyword string, limit int) ([]searchidx.MemberDocument, error)
}

// BookmarkReader provides the relational aggregates used to rank and
// annotate index hits.
type BookmarkReader interface {
	CountByTripIDs(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ExistingTripIDs(ctx context.Context, memberID uuid.UUID, tripIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// Service answers keyword and nickname searches.
type Service struct {
	idx       Searcher
	bookmarks BookmarkReader
	pageSize  int
	log       *zap.Logger
}

// NewService wires the search service. pageSize bounds every result list.
func NewService(idx Searcher, bookmarks BookmarkReader, pageSize int, logger *zap.Logger) *Service {
	return &Service{idx: idx, bookmarks: bookmarks, pageSize: pageSize, log: logger}
}

// TripResult is one keyword-search hit, annotated from the relational store.
type TripResult struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Locations     []string  `json:"locations"`
	BookmarkCount int64     `json:"bookmark_count"`
	Bookmarked    bool      `json:"bookmarked"`
}

// SearchTrips matches keyword against public trip titles and descriptions.
// Bookmark counts and the caller's own bookmark state come from the
// relational store; when byBookmarks is set, results are ordered by count
// descending.
func (s *Service) SearchTrips(ctx context.Context, requesterID uuid.UUID, keyword string, byBookmarks bool) ([]TripResult, error) {
	docs, err := s.idx.SearchPublicTrips(ctx, keyword, s.pageSize)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, requesterID, docs, byBookmarks)
}

// SearchTripsByLocation matches keyword against the nested location names
// of public trips.
func (s *Service) SearchTripsByLocation(ctx context.Context, requesterID uuid.UUID, keyword string, byBookmarks bool) ([]TripResult, error) {
	docs, err := s.idx.SearchPublicTripsByLocation(ctx, keyword, s.pageSize)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, requesterID, docs, byBookmarks)
}

func (s *Service) annotate(ctx context.Context, requesterID uuid.UUID, docs []searchidx.TripDocument, byBookmarks bool) ([]TripResult, error) {
	results := make([]TripResult, 0, len(docs))
	var ids []uuid.UUID
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			// A malformed id means a corrupt document; drop the hit rather
			// than failing the whole search.
			s.log.Warn("skipping search document with bad id", zap.String("doc_id", doc.ID))
			continue
		}
		names := make([]string, 0, len(doc.Locations))
		for _, loc := range doc.Locations {
			names = append(names, loc.Name)
		}
		ids = append(ids, id)
		results = append(results, TripResult{
			ID:          id,
			Title:       doc.Title,
			Description: doc.Description,
			Locations:   names,
		})
	}

	counts, err := s.bookmarks.CountByTripIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	mine, err := s.bookmarks.ExistingTripIDs(ctx, requesterID, ids)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].BookmarkCount = counts[results[i].ID]
		results[i].Bookmarked = mine[results[i].ID]
	}

	if byBookmarks {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].BookmarkCount > results[j].BookmarkCount
		})
	}
	return results, nil
}

// MemberResult is one addable-member hit. IsInvited reads the projected
// trips list and is eventually consistent: a just-invited member may show
// false until the projector catches up.
type MemberResult struct {
	ID         uuid.UUID `json:"id"`
	Nickname   string    `json:"nickname"`
	ProfileURL string    `json:"profile_url"`
	IsInvited  bool      `json:"is_invited"`
}

// SearchAddableMembers matches keyword against member nicknames, excluding
// the requester.
func (s *Service) SearchAddableMembers(ctx context.Context, requesterID uuid.UUID, keyword string) ([]MemberResult, error) {
	return s.searchMembers(ctx, requesterID, keyword, "")
}

// SearchAddableMembersInTrip is SearchAddableMembers with each candidate
// annotated by whether tripID already appears in their projected trips.
func (s *Service) SearchAddableMembersInTrip(ctx context.Context, tripID uuid.UUID, requesterID uuid.UUID, keyword string) ([]MemberResult, error) {
	return s.searchMembers(ctx, requesterID, keyword, tripID.String())
}

func (s *Service) searchMembers(ctx context.Context, requesterID uuid.UUID, keyword, tripID string) ([]MemberResult, error) {
	docs, err := s.idx.SearchMembersByNickname(ctx, keyword, s.pageSize)
	if err != nil {
		return nil, err
	}
	results := make([]MemberResult, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			s.log.Warn("skipping search document with bad id", zap.String("doc_id", doc.ID))
			continue
		}
		if id == requesterID {
			continue
		}
		res := MemberResult{
			ID:         id,
			Nickname:   doc.Nickname,
			ProfileURL: doc.ProfileURL,
		}
		if tripID != "" {
			res.IsInvited = doc.HasTrip(tripID)
		}
		results = append(results, res)
	}
	return results, nil
}
