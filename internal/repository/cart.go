package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"techstore/internal/entity"
)

type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(cartItemsCollection)}
}

// AddItem upserts the (user, product) line, incrementing the quantity in a
// single write so concurrent adds cannot lose updates. Returns the line
// after the increment.
func (r *CartRepository) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*entity.CartItem, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var item entity.CartItem
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID, "product_id": productID},
		bson.M{
			"$inc":         bson.M{"quantity": quantity},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		opts).Decode(&item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.CartItem, error) {
	var item entity.CartItem
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) GetByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*entity.CartItem, error) {
	var item entity.CartItem
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "product_id": productID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) SetQuantity(ctx context.Context, id primitive.ObjectID, quantity int) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"quantity": quantity, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*entity.CartItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*entity.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CartRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
