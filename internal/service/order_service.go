package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
	"techstore/internal/repository"
)

const (
	idempotencyTTL  = 24 * time.Hour
	rollbackTimeout = 10 * time.Second
)

// EventWriter is the subset of *kafka.Writer the order flow uses.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OrderEvent is the payload published to the order-events topic.
type OrderEvent struct {
	Order *entity.Order       `json:"order"`
	Items []*entity.OrderItem `json:"items"`
}

type OrderService struct {
	orders   OrderRepository
	carts    CartRepository
	products ProductRepository
	idem     IdempotencyGuard
	events   EventWriter
	pricing  Pricing
}

func NewOrderService(orders OrderRepository, carts CartRepository, products ProductRepository, idem IdempotencyGuard, events EventWriter, pricing Pricing) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		products: products,
		idem:     idem,
		events:   events,
		pricing:  pricing,
	}
}

type CheckoutInput struct {
	RecipientName   string `json:"shipping_recipient_name"`
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
	IdempotencyKey  string `json:"-"`
}

type checkoutLine struct {
	item    *entity.CartItem
	product *entity.Product
}

// Checkout converts the user's cart into a persisted order. Stock is
// reserved per line with an atomic conditional decrement, and every write
// after the first reservation has a compensating action: if any step fails,
// the completed steps are undone in reverse order so the checkout either
// fully applies or fully reverts.
func (s *OrderService) Checkout(ctx context.Context, userID primitive.ObjectID, input CheckoutInput) (*entity.Order, []*entity.OrderItem, error) {
	if input.RecipientName == "" {
		return nil, nil, fmt.Errorf("%w: recipient name is required", ErrValidation)
	}
	if input.ShippingAddress == "" {
		return nil, nil, fmt.Errorf("%w: shipping address is required", ErrValidation)
	}
	if input.PaymentMethod == "" {
		return nil, nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	var undo []func(context.Context)
	// rollback runs the compensations on a context detached from the
	// request: a cancelled request must not also kill its own cleanup, or
	// reserved stock would be lost for good.
	rollback := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer cancel()
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i](ctx)
		}
	}

	// The key stays claimed only if the order is placed; a checkout that
	// reverts releases it so the client can retry.
	if input.IdempotencyKey != "" {
		claimed, err := s.idem.Claim(ctx, input.IdempotencyKey, idempotencyTTL)
		if err != nil {
			return nil, nil, err
		}
		if !claimed {
			return nil, nil, ErrDuplicateRequest
		}
		key := input.IdempotencyKey
		undo = append(undo, func(ctx context.Context) {
			if err := s.idem.Release(ctx, key); err != nil {
				logger.Error().Err(err).Msg("Failed to release idempotency key")
			}
		})
	}

	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		rollback(ctx)
		return nil, nil, err
	}

	// Lines whose product is inactive or under-stocked are discarded, per
	// the storefront rules; only the survivors are purchased.
	var candidates []checkoutLine
	for _, item := range items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			rollback(ctx)
			return nil, nil, err
		}
		if !product.Purchasable(item.Quantity) {
			continue
		}
		candidates = append(candidates, checkoutLine{item: item, product: product})
	}
	if len(candidates) == 0 {
		rollback(ctx)
		return nil, nil, ErrCartEmpty
	}

	// Reserve stock. A line that loses the race to the last units is
	// dropped, same as a line that failed validation above.
	var lines []checkoutLine
	for _, line := range candidates {
		err := s.products.DecrementStock(ctx, line.product.ID, line.item.Quantity)
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				continue
			}
			rollback(ctx)
			return nil, nil, err
		}
		productID, quantity := line.product.ID, line.item.Quantity
		undo = append(undo, func(ctx context.Context) {
			if err := s.products.IncrementStock(ctx, productID, quantity); err != nil {
				logger.Error().Err(err).Msgf("Failed to restore stock for product %s", productID.Hex())
			}
		})
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		rollback(ctx)
		return nil, nil, ErrCartEmpty
	}

	var subtotal float64
	for _, line := range lines {
		subtotal += line.product.Price * float64(line.item.Quantity)
	}
	shippingFee := s.pricing.ShippingFeeFor(subtotal)

	order := &entity.Order{
		UserID:          userID,
		Subtotal:        subtotal,
		ShippingFee:     shippingFee,
		TotalAmount:     subtotal + shippingFee,
		RecipientName:   input.RecipientName,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
		OrderStatus:     entity.OrderStatusPending,
		PaymentStatus:   entity.PaymentPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		rollback(ctx)
		return nil, nil, err
	}
	undo = append(undo, func(ctx context.Context) {
		if err := s.orders.Delete(ctx, order.ID); err != nil {
			logger.Error().Err(err).Msgf("Failed to delete order %s", order.ID.Hex())
		}
	})

	orderItems := make([]*entity.OrderItem, 0, len(lines))
	for _, line := range lines {
		orderItems = append(orderItems, &entity.OrderItem{
			OrderID:     order.ID,
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			UnitPrice:   line.product.Price,
			Quantity:    line.item.Quantity,
			LineTotal:   line.product.Price * float64(line.item.Quantity),
		})
	}
	if err := s.orders.InsertItems(ctx, orderItems); err != nil {
		logger.Error().Err(err).Msg("Error creating order items")
		if derr := s.orders.DeleteItems(ctx, order.ID); derr != nil {
			logger.Error().Err(derr).Msgf("Failed to delete items of order %s", order.ID.Hex())
		}
		rollback(ctx)
		return nil, nil, err
	}
	undo = append(undo, func(ctx context.Context) {
		if err := s.orders.DeleteItems(ctx, order.ID); err != nil {
			logger.Error().Err(err).Msgf("Failed to delete items of order %s", order.ID.Hex())
		}
	})

	if err := s.carts.DeleteByUser(ctx, userID); err != nil {
		logger.Error().Err(err).Msg("Error clearing cart")
		rollback(ctx)
		return nil, nil, err
	}

	s.publish(ctx, "created", order, orderItems)
	return order, orderItems, nil
}

// Get returns an order with its items. Non-staff callers only see their own
// orders; anything else reads as not found.
func (s *OrderService) Get(ctx context.Context, callerID primitive.ObjectID, orderID primitive.ObjectID, staff bool) (*entity.Order, []*entity.OrderItem, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !staff && order.UserID != callerID {
		return nil, nil, repository.ErrNotFound
	}
	items, err := s.orders.ItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID primitive.ObjectID, page repository.Page) ([]*entity.Order, int64, error) {
	return s.orders.ListByUser(ctx, userID, page)
}

func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, int64, error) {
	return s.orders.List(ctx, filter)
}

// Cancel reverses a pending order. The status flip is a compare-and-set, so
// a second cancellation fails before any stock is restored.
func (s *OrderService) Cancel(ctx context.Context, callerID primitive.ObjectID, orderID primitive.ObjectID, staff bool) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !staff && order.UserID != callerID {
		return nil, repository.ErrNotFound
	}

	if err := s.orders.TransitionStatus(ctx, orderID, entity.OrderStatusPending, entity.OrderStatusCancelled); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrNotCancellable
		}
		return nil, err
	}
	order.OrderStatus = entity.OrderStatusCancelled

	items, err := s.restoreStock(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "cancelled", order, items)
	return order, nil
}

type StatusUpdate struct {
	OrderStatus   entity.OrderStatus   `json:"order_status"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
}

// UpdateStatus applies an admin status change, validated against the order
// state machine. Cancelling through here restores stock the same way a
// customer cancellation does.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, update StatusUpdate) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if update.OrderStatus != "" && update.OrderStatus != order.OrderStatus {
		if !update.OrderStatus.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, update.OrderStatus)
		}
		if !order.OrderStatus.CanTransitionTo(update.OrderStatus) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, update.OrderStatus)
		}
		if err := s.orders.TransitionStatus(ctx, orderID, order.OrderStatus, update.OrderStatus); err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				return nil, ErrInvalidTransition
			}
			return nil, err
		}
		previous := order.OrderStatus
		order.OrderStatus = update.OrderStatus

		if update.OrderStatus == entity.OrderStatusCancelled && previous != entity.OrderStatusCancelled {
			if _, err := s.restoreStock(ctx, orderID); err != nil {
				return nil, err
			}
		}
	}

	if update.PaymentStatus != "" && update.PaymentStatus != order.PaymentStatus {
		if !update.PaymentStatus.Valid() {
			return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, update.PaymentStatus)
		}
		if err := s.orders.SetPaymentStatus(ctx, orderID, update.PaymentStatus); err != nil {
			return nil, err
		}
		order.PaymentStatus = update.PaymentStatus
	}

	s.publish(ctx, "status_updated", order, nil)
	return order, nil
}

// restoreStock returns each order item's quantity to its product.
func (s *OrderService) restoreStock(ctx context.Context, orderID primitive.ObjectID) ([]*entity.OrderItem, error) {
	items, err := s.orders.ItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error().Err(err).Msgf("Error restoring stock for product %s", item.ProductID.Hex())
		}
	}
	return items, nil
}

// publish emits an order event. Publishing happens after the state change
// is committed, so failures are logged rather than surfaced.
func (s *OrderService) publish(ctx context.Context, event string, order *entity.Order, items []*entity.OrderItem) {
	payload, err := json.Marshal(OrderEvent{Order: order, Items: items})
	if err != nil {
		logger.Error().Err(err).Msg("Error marshalling order event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order.%s.%s", event, order.ID.Hex())),
		Value: payload,
	}
	if err := s.events.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing order %s event", event)
	}
}
