package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shipping-label-service/internal/model"
)

var ErrNotFound = errors.New("record not found")

// ShipmentFilter narrows and pages the shipment listing.
type ShipmentFilter struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// Mongo implementation
type MongoShipmentRepository struct {
	col *mongo.Collection
}

func NewMongoShipmentRepository(db *mongo.Database) *MongoShipmentRepository {
	return &MongoShipmentRepository{col: db.Collection("shipments")}
}

func (m *MongoShipmentRepository) InsertMany(ctx context.Context, shipments []*model.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(shipments))
	for _, s := range shipments {
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
		docs = append(docs, s)
	}

	_, err := m.col.InsertMany(ctx, docs)
	return err
}

func (m *MongoShipmentRepository) FindByID(ctx context.Context, id string) (*model.Shipment, error) {
	var res model.Shipment
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoShipmentRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Shipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return m.findAll(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// Find lists shipments newest first with an optional status filter and
// a case-insensitive search over order number and ship-to fields.
func (m *MongoShipmentRepository) Find(ctx context.Context, filter ShipmentFilter) ([]*model.Shipment, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"order_no": pattern},
			bson.M{"ship_to_first_name": pattern},
			bson.M{"ship_to_last_name": pattern},
			bson.M{"ship_to_address": pattern},
			bson.M{"ship_to_city": pattern},
		}
	}

	total, err := m.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * filter.PageSize))
		opts.SetLimit(int64(filter.PageSize))
	}

	out, err := m.findAll(ctx, query, opts)
	return out, total, err
}

func (m *MongoShipmentRepository) FindAll(ctx context.Context) ([]*model.Shipment, error) {
	return m.findAll(ctx, bson.M{}, nil)
}

// Save replaces the whole document. Per-record writes are atomic at
// the document level, which is all the bulk paths need.
func (m *MongoShipmentRepository) Save(ctx context.Context, s *model.Shipment) error {
	s.UpdatedAt = time.Now().UTC()

	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoShipmentRepository) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoShipmentRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := m.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoShipmentRepository) MarkPurchased(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := m.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{
			"purchased":    true,
			"purchased_at": at,
			"updated_at":   time.Now().UTC(),
		}},
	)
	return err
}

func (m *MongoShipmentRepository) findAll(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*model.Shipment, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = m.col.Find(ctx, query, opts)
	} else {
		cur, err = m.col.Find(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Shipment
	for cur.Next(ctx) {
		var v model.Shipment
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
