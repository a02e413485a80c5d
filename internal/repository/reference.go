// reference.go holds the saved-address and saved-package stores used
// as autofill sources and bulk-apply targets.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shipping-label-service/internal/model"
)

type MongoSavedAddressRepository struct {
	col *mongo.Collection
}

func NewMongoSavedAddressRepository(db *mongo.Database) *MongoSavedAddressRepository {
	return &MongoSavedAddressRepository{col: db.Collection("saved_addresses")}
}

// FindAll lists addresses with the default first, then by name.
func (m *MongoSavedAddressRepository) FindAll(ctx context.Context) ([]*model.SavedAddress, error) {
	opts := options.Find().SetSort(bson.D{{Key: "is_default", Value: -1}, {Key: "name", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.SavedAddress
	for cur.Next(ctx) {
		var v model.SavedAddress
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoSavedAddressRepository) FindByID(ctx context.Context, id string) (*model.SavedAddress, error) {
	var res model.SavedAddress
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// FindDefault returns the address flagged is_default, or the first
// saved address when none is flagged. No address at all is ErrNotFound.
func (m *MongoSavedAddressRepository) FindDefault(ctx context.Context) (*model.SavedAddress, error) {
	var res model.SavedAddress
	err := m.col.FindOne(ctx, bson.M{"is_default": true}).Decode(&res)
	if err == nil {
		return &res, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "name", Value: 1}})
	err = m.col.FindOne(ctx, bson.M{}, opts).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoSavedAddressRepository) Insert(ctx context.Context, a *model.SavedAddress) error {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, a)
	return err
}

func (m *MongoSavedAddressRepository) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoSavedPackageRepository struct {
	col *mongo.Collection
}

func NewMongoSavedPackageRepository(db *mongo.Database) *MongoSavedPackageRepository {
	return &MongoSavedPackageRepository{col: db.Collection("saved_packages")}
}

func (m *MongoSavedPackageRepository) FindAll(ctx context.Context) ([]*model.SavedPackage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.SavedPackage
	for cur.Next(ctx) {
		var v model.SavedPackage
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoSavedPackageRepository) FindByID(ctx context.Context, id string) (*model.SavedPackage, error) {
	var res model.SavedPackage
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoSavedPackageRepository) Insert(ctx context.Context, p *model.SavedPackage) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, p)
	return err
}

func (m *MongoSavedPackageRepository) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
