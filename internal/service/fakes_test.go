package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
	"techstore/internal/repository"
)

// In-memory fakes for the repository interfaces. The stock and status
// methods reproduce the conditional-write semantics of the mongo
// implementations, mutex-guarded so the concurrency tests are meaningful.

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[primitive.ObjectID]*entity.Product)}
}

func (r *fakeProductRepo) put(p *entity.Product) *entity.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	clone := *p
	r.products[p.ID] = &clone
	return p
}

func (r *fakeProductRepo) stock(id primitive.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].StockQuantity
}

func (r *fakeProductRepo) Create(ctx context.Context, p *entity.Product) error {
	r.put(p)
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *fakeProductRepo) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.StockQuantity < quantity {
		return repository.ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	return nil
}

func (r *fakeProductRepo) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.StockQuantity += quantity
	return nil
}

type fakeCartRepo struct {
	mu    sync.Mutex
	items []*entity.CartItem
}

func newFakeCartRepo() *fakeCartRepo { return &fakeCartRepo{} }

func (r *fakeCartRepo) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*entity.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity += quantity
			clone := *item
			return &clone, nil
		}
	}
	item := &entity.CartItem{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
	r.items = append(r.items, item)
	clone := *item
	return &clone, nil
}

func (r *fakeCartRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			clone := *item
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCartRepo) GetByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*entity.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.UserID == userID && item.ProductID == productID {
			clone := *item
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCartRepo) SetQuantity(ctx context.Context, id primitive.ObjectID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			item.Quantity = quantity
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCartRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*entity.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CartItem
	for _, item := range r.items {
		if item.UserID == userID {
			clone := *item
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeCartRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.items {
		if item.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCartRepo) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.CartItem
	for _, item := range r.items {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*entity.Order
	items  []*entity.OrderItem

	createErr      error
	insertItemsErr error
	beforeCreate   func()
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[primitive.ObjectID]*entity.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now()
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *fakeOrderRepo) InsertItems(ctx context.Context, items []*entity.OrderItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.insertItemsErr != nil {
		return r.insertItemsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		item.ID = primitive.NewObjectID()
		clone := *item
		r.items = append(r.items, &clone)
	}
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) DeleteItems(ctx context.Context, orderID primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.OrderItem
	for _, item := range r.items {
		if item.OrderID != orderID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) ItemsByOrder(ctx context.Context, orderID primitive.ObjectID) ([]*entity.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.OrderItem
	for _, item := range r.items {
		if item.OrderID == orderID {
			clone := *item
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, page repository.Page) ([]*entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			clone := *order
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Order
	for _, order := range r.orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && order.OrderStatus != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && order.PaymentStatus != filter.PaymentStatus {
			continue
		}
		clone := *order
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to entity.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.OrderStatus != from {
		return repository.ErrStatusConflict
	}
	order.OrderStatus = to
	return nil
}

func (r *fakeOrderRepo) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status entity.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.PaymentStatus = status
	return nil
}

func (r *fakeOrderRepo) CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[entity.OrderStatus]int64)
	for _, order := range r.orders {
		counts[order.OrderStatus]++
	}
	return counts, nil
}

func (r *fakeOrderRepo) Revenue(ctx context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var revenue float64
	for _, order := range r.orders {
		if order.PaymentStatus == entity.PaymentPaid && order.OrderStatus != entity.OrderStatusCancelled {
			revenue += order.TotalAmount
		}
	}
	return revenue, nil
}

func (r *fakeOrderRepo) MonthlyRevenue(ctx context.Context, months int) ([]repository.MonthlyRevenue, error) {
	return nil, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, role string, page repository.Page) ([]*entity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, user := range r.users {
		if role == "" || user.Role == role {
			clone := *user
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	users, total, _ := r.List(ctx, role, repository.Page{})
	_ = users
	return total, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]string)}
}

func (s *fakeSessionStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
	return nil
}

func (s *fakeSessionStore) Get(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[token]
	if !ok {
		return "", repository.ErrNotFound
	}
	return userID, nil
}

func (s *fakeSessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

type fakeIdempotencyGuard struct {
	mu      sync.Mutex
	claimed map[string]bool
}

func newFakeIdempotencyGuard() *fakeIdempotencyGuard {
	return &fakeIdempotencyGuard{claimed: make(map[string]bool)}
}

func (g *fakeIdempotencyGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claimed[key] {
		return false, nil
	}
	g.claimed[key] = true
	return true, nil
}

func (g *fakeIdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, key)
	return nil
}

type fakeEventWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (w *fakeEventWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeEventWriter) keys() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.messages))
	for _, msg := range w.messages {
		out = append(out, string(msg.Key))
	}
	return out
}

type fakeProductCache struct {
	mu    sync.Mutex
	cache map[primitive.ObjectID]*entity.Product
}

func newFakeProductCache() *fakeProductCache {
	return &fakeProductCache{cache: make(map[primitive.ObjectID]*entity.Product)}
}

func (c *fakeProductCache) Get(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	product, ok := c.cache[id]
	if !ok {
		return nil, nil
	}
	clone := *product
	return &clone, nil
}

func (c *fakeProductCache) Set(ctx context.Context, product *entity.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *product
	c.cache[product.ID] = &clone
	return nil
}

func (c *fakeProductCache) Delete(ctx context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, id)
	return nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]*entity.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[primitive.ObjectID]*entity.Category)}
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = primitive.NewObjectID()
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Category
	for _, category := range r.categories {
		clone := *category
		out = append(out, &clone)
	}
	return out, nil
}
