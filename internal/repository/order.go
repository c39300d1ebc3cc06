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

type OrderRepository struct {
	orders *mongo.Collection
	items  *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		orders: db.Collection(ordersCollection),
		items:  db.Collection(orderItemsCollection),
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := r.orders.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *OrderRepository) InsertItems(ctx context.Context, items []*entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		docs = append(docs, item)
	}
	res, err := r.items.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range res.InsertedIDs {
		items[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

// Delete removes an order document. Only used to compensate a failed
// checkout; orders are never deleted in the normal flow.
func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.orders.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *OrderRepository) DeleteItems(ctx context.Context, orderID primitive.ObjectID) error {
	_, err := r.items.DeleteMany(ctx, bson.M{"order_id": orderID})
	return err
}

func (r *OrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	var order entity.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ItemsByOrder(ctx context.Context, orderID primitive.ObjectID) ([]*entity.OrderItem, error) {
	cursor, err := r.items.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*entity.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page Page) ([]*entity.Order, int64, error) {
	return r.find(ctx, bson.M{"user_id": userID}, page)
}

func (r *OrderRepository) List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if filter.Status != "" {
		query["order_status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		query["payment_status"] = filter.PaymentStatus
	}
	return r.find(ctx, query, filter.Page)
}

func (r *OrderRepository) find(ctx context.Context, query bson.M, page Page) ([]*entity.Order, int64, error) {
	total, err := r.orders.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit())

	cursor, err := r.orders.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var orders []*entity.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TransitionStatus flips order_status from one state to another as a single
// compare-and-set. ErrStatusConflict means the order was not in the expected
// state, e.g. a second cancellation of the same order.
func (r *OrderRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to entity.OrderStatus) error {
	res, err := r.orders.UpdateOne(ctx,
		bson.M{"_id": id, "order_status": from},
		bson.M{"$set": bson.M{"order_status": to, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *OrderRepository) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status entity.PaymentStatus) error {
	res, err := r.orders.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"payment_status": status, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$order_status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status entity.OrderStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[entity.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Revenue sums total_amount over paid, non-cancelled orders. The same rule
// feeds both the dashboard total and the monthly buckets.
func (r *OrderRepository) Revenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: revenueFilter()}},
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$total_amount"}}}},
	}
	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Revenue, nil
}

func (r *OrderRepository) MonthlyRevenue(ctx context.Context, months int) ([]MonthlyRevenue, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(months - 1), 0)

	match := revenueFilter()
	match["created_at"] = bson.M{"$gte": start}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$created_at"}},
			"revenue": bson.M{"$sum": "$total_amount"},
			"orders":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []MonthlyRevenue
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

func revenueFilter() bson.M {
	return bson.M{
		"payment_status": entity.PaymentPaid,
		"order_status":   bson.M{"$ne": entity.OrderStatusCancelled},
	}
}
