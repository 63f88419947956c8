// internal/searchidx/client.go
package searchidx

import (
	"context"
	"errors"
	"regexp"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDocNotFound is returned when no document exists for the id.
	ErrDocNotFound = errors.New("search document not found")
	// ErrVersionConflict is returned when a versioned upsert matched no
	// document because another writer got there first. Callers refetch and
	// reapply their mutation.
	ErrVersionConflict = errors.New("search document version conflict")
)

// Index is the client surface over the search store. The projector mutates
// it, the hybrid query layer reads it, and the administrative rebuild
// repopulates it.
type Index interface {
	UpsertMember(ctx context.Context, doc MemberDocument) error
	UpsertTrip(ctx context.Context, doc TripDocument) error
	BulkUpsertMembers(ctx context.Context, docs []MemberDocument) error
	BulkUpsertTrips(ctx context.Context, docs []TripDocument) error
	FindMember(ctx context.Context, id string) (MemberDocument, error)
	FindMembersByIDIn(ctx context.Context, ids []string) ([]MemberDocument, error)
	FindTrip(ctx context.Context, id string) (TripDocument, error)
	SearchPublicTrips(ctx context.Context, keyword string, limit int) ([]TripDocument, error)
	SearchPublicTripsByLocation(ctx context.Context, keyword string, limit int) ([]TripDocument, error)
	SearchMembersByNickname(ctx context.Context, keyword string, limit int) ([]MemberDocument, error)
}

// Mongo implements Index on two MongoDB collections.
type Mongo struct {
	members *mongo.Collection
	trips   *mongo.Collection
}

// NewMongo creates the index client over db.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		members: db.Collection("member_documents"),
		trips:   db.Collection("trip_documents"),
	}
}

// EnsureIndexes creates the secondary indexes the query layer relies on.
// Each creation is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("member_documents").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "nickname_ci", Value: 1}}},
		{Keys: bson.D{{Key: "trips", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("trip_documents").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "private", Value: 1}, {Key: "title_ci", Value: 1}}},
		{Keys: bson.D{{Key: "locations.name_ci", Value: 1}}},
	})
	return err
}

// writeModel builds a versioned write. Version 0 means "new document" and
// becomes a plain insert, so a concurrent writer that created the document
// first surfaces as a duplicate key instead of being replaced. A nonzero
// version must match the stored document, otherwise the replace is
// silently unmatched. Both cases report as ErrVersionConflict and the
// caller refetches. The written document carries version+1.
func writeModel(id string, version int64, doc any) mongo.WriteModel {
	if version == 0 {
		return mongo.NewInsertOneModel().SetDocument(doc)
	}
	return mongo.NewReplaceOneModel().
		SetFilter(bson.M{"_id": id, "version": version}).
		SetReplacement(doc)
}

func (m *Mongo) bulkWrite(ctx context.Context, c *mongo.Collection, writes []mongo.WriteModel) error {
	if len(writes) == 0 {
		return nil
	}
	res, err := c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount+res.UpsertedCount+res.InsertedCount < int64(len(writes)) {
		return ErrVersionConflict
	}
	return nil
}

func (m *Mongo) UpsertMember(ctx context.Context, doc MemberDocument) error {
	return m.BulkUpsertMembers(ctx, []MemberDocument{doc})
}

func (m *Mongo) UpsertTrip(ctx context.Context, doc TripDocument) error {
	return m.BulkUpsertTrips(ctx, []TripDocument{doc})
}

func (m *Mongo) BulkUpsertMembers(ctx context.Context, docs []MemberDocument) error {
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		v := d.Version
		d.Version = v + 1
		writes = append(writes, writeModel(d.ID, v, d))
	}
	return m.bulkWrite(ctx, m.members, writes)
}

func (m *Mongo) BulkUpsertTrips(ctx context.Context, docs []TripDocument) error {
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		v := d.Version
		d.Version = v + 1
		writes = append(writes, writeModel(d.ID, v, d))
	}
	return m.bulkWrite(ctx, m.trips, writes)
}

func (m *Mongo) FindMember(ctx context.Context, id string) (MemberDocument, error) {
	var doc MemberDocument
	err := m.members.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return MemberDocument{}, ErrDocNotFound
	}
	if err != nil {
		return MemberDocument{}, err
	}
	return doc, nil
}

func (m *Mongo) FindMembersByIDIn(ctx context.Context, ids []string) ([]MemberDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := m.members.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []MemberDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (m *Mongo) FindTrip(ctx context.Context, id string) (TripDocument, error) {
	var doc TripDocument
	err := m.trips.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return TripDocument{}, ErrDocNotFound
	}
	if err != nil {
		return TripDocument{}, err
	}
	return doc, nil
}

// substr builds a case-folded substring regex for a *_ci field.
func substr(keyword string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(text.Fold(keyword))}
}

// SearchPublicTrips matches keyword as a substring of title or description,
// restricted at the index level to public trips.
func (m *Mongo) SearchPublicTrips(ctx context.Context, keyword string, limit int) ([]TripDocument, error) {
	filter := bson.M{
		"private": false,
		"$or": []bson.M{
			{"title_ci": substr(keyword)},
			{"description_ci": substr(keyword)},
		},
	}
	return m.findTrips(ctx, filter, limit)
}

// SearchPublicTripsByLocation matches keyword against the nested location
// names of public trips.
func (m *Mongo) SearchPublicTripsByLocation(ctx context.Context, keyword string, limit int) ([]TripDocument, error) {
	filter := bson.M{
		"private":           false,
		"locations.name_ci": substr(keyword),
	}
	return m.findTrips(ctx, filter, limit)
}

func (m *Mongo) findTrips(ctx context.Context, filter bson.M, limit int) ([]TripDocument, error) {
	cur, err := m.trips.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []TripDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// SearchMembersByNickname matches keyword as a substring of the nickname.
func (m *Mongo) SearchMembersByNickname(ctx context.Context, keyword string, limit int) ([]MemberDocument, error) {
	cur, err := m.members.Find(ctx,
		bson.M{"nickname_ci": substr(keyword)},
		options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "nickname_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []MemberDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
