package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cimillas/events-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const eventsCollection = "events"

// eventDocument is the stored shape. BSON dates hold milliseconds, so times are
// truncated before insert to keep the returned event equal to what a read sees.
type eventDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Date        time.Time          `bson:"date"`
	Location    string             `bson:"location"`
	Description string             `bson:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d eventDocument) toDomain() domain.Event {
	return domain.Event{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Date:        d.Date.UTC(),
		Location:    d.Location,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type EventRepository struct {
	coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(eventsCollection)}
}

// EnsureIndexes creates the secondary indexes the collection relies on. It is
// safe to call on every startup.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("createdAt_1"),
	})
	if err != nil {
		return wrapErr("ensure indexes", err)
	}
	return nil
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	doc := eventDocument{
		ID:          primitive.NewObjectID(),
		Name:        event.Name,
		Date:        event.Date.Truncate(time.Millisecond),
		Location:    event.Location,
		Description: event.Description,
		CreatedAt:   event.CreatedAt.Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.Event{}, wrapErr("create event", err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, wrapErr("list events", err)
	}
	defer cursor.Close(ctx)

	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode events", err)
	}

	events := make([]domain.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, doc.toDomain())
	}
	return events, nil
}

// UpdateEvent sets only the fields present in patch and returns the document as
// stored afterwards, or (nil, nil) when the id matches nothing.
func (r *EventRepository) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", domain.ErrInvalidID)
	}
	filter := bson.D{{Key: "_id", Value: oid}}

	var res *mongo.SingleResult
	if patch.IsEmpty() {
		res = r.coll.FindOne(ctx, filter)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		res = r.coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: setFields(patch)}}, opts)
	}

	var doc eventDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapErr("update event", err)
	}
	event := doc.toDomain()
	return &event, nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("delete event: %w", domain.ErrInvalidID)
	}
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}}); err != nil {
		return wrapErr("delete event", err)
	}
	return nil
}

func setFields(patch domain.EventPatch) bson.D {
	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Date != nil {
		set = append(set, bson.E{Key: "date", Value: *patch.Date})
	}
	if patch.Location != nil {
		set = append(set, bson.E{Key: "location", Value: *patch.Location})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.CreatedAt != nil {
		set = append(set, bson.E{Key: "createdAt", Value: *patch.CreatedAt})
	}
	return set
}
