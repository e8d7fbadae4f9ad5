package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"restaurant_pos_backend/internal/database"
	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/repositories"
)

// --- Data Transfer Objects (DTOs) ---

// CustomerRequest optionally attaches a customer to a new order.
type CustomerRequest struct {
	FullName    string  `json:"full_name" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email"`
}

// PaymentRequest records an initial payment with a new order. A zero amount pays the order total.
type PaymentRequest struct {
	Method string          `json:"method" binding:"required,oneof=cash card upi"`
	Amount decimal.Decimal `json:"amount"`
}

// PlaceOrderRequest is used for placing a new order.
type PlaceOrderRequest struct {
	TableNumber int              `json:"table_number" binding:"required,gt=0"`
	StaffID     int64            `json:"-"`
	Lines       []OrderLine      `json:"items" binding:"required,min=1,dive"`
	Notes       *string          `json:"notes"`
	Customer    *CustomerRequest `json:"customer"`
	Payment     *PaymentRequest  `json:"payment"`
}

// UpdateOrderStatusRequest is used for updating the status of an order.
type UpdateOrderStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason"`
}

// CancelOrderRequest carries the optional free-text reason.
type CancelOrderRequest struct {
	Reason *string `json:"reason"`
}

// --- End of DTOs ---

type OrderService interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID int64, reason *string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, req UpdateOrderStatusRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error)
}

type orderService struct {
	tx           database.Transactor
	db           repositories.SQLExecutor // reads outside a transaction
	orderRepo    repositories.OrderRepository
	customerRepo repositories.CustomerRepository
	paymentRepo  repositories.PaymentRepository
	movementRepo repositories.InventoryMovementRepository
	aggregator   *RequirementAggregator
	ledger       *StockLedger
	notifier     LowStockNotifier
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	tx database.Transactor,
	db repositories.SQLExecutor,
	or repositories.OrderRepository,
	cr repositories.CustomerRepository,
	pr repositories.PaymentRepository,
	imr repositories.InventoryMovementRepository,
	aggregator *RequirementAggregator,
	ledger *StockLedger,
	notifier LowStockNotifier,
) OrderService {
	return &orderService{
		tx:           tx,
		db:           db,
		orderRepo:    or,
		customerRepo: cr,
		paymentRepo:  pr,
		movementRepo: imr,
		aggregator:   aggregator,
		ledger:       ledger,
		notifier:     notifier,
	}
}

func validatePlaceOrder(req PlaceOrderRequest) error {
	if req.TableNumber <= 0 {
		return fmt.Errorf("%w: table number must be positive", ErrValidation)
	}
	if req.StaffID <= 0 {
		return fmt.Errorf("%w: staff id is required", ErrValidation)
	}
	if len(req.Lines) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrInvalidLine)
	}
	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidLine, i+1)
		}
	}
	if req.Customer != nil && strings.TrimSpace(req.Customer.FullName) == "" {
		return fmt.Errorf("%w: customer name cannot be empty", ErrValidation)
	}
	if req.Payment != nil && req.Payment.Amount.IsNegative() {
		return fmt.Errorf("%w: payment amount cannot be negative", ErrValidation)
	}
	return nil
}

// PlaceOrder resolves, checks, decrements and persists the order as one unit of work.
// Nothing is visible to other transactions unless every step succeeds.
func (s *orderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}

	var order *models.Order
	var changes []StockChange
	err := s.tx.WithinTx(ctx, func(exec database.Executor) error {
		agg, err := s.aggregator.Aggregate(ctx, exec, req.Lines, ResolveOrderable)
		if err != nil {
			return err
		}
		if err := s.ledger.CheckSufficiency(ctx, exec, agg.Demand); err != nil {
			return err
		}

		now := time.Now()
		order = &models.Order{
			TableNumber: req.TableNumber,
			StaffID:     req.StaffID,
			Status:      models.OrderStatusPending,
			TotalAmount: agg.Total,
			Notes:       req.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if req.Customer != nil {
			customer := &models.Customer{
				FullName:    strings.TrimSpace(req.Customer.FullName),
				PhoneNumber: req.Customer.PhoneNumber,
				Email:       req.Customer.Email,
			}
			if _, err := s.customerRepo.UpsertCustomer(ctx, exec, customer); err != nil {
				return fmt.Errorf("failed to save customer: %w", err)
			}
			order.CustomerID = &customer.ID
			order.Customer = customer
		}

		// The order row is written first so every sale movement can reference it.
		if _, err := s.orderRepo.CreateOrder(ctx, exec, order); err != nil {
			return fmt.Errorf("failed to create order record: %w", err)
		}

		changes, err = s.ledger.Decrement(ctx, exec, agg.Demand, MovementRef{
			OrderID: &order.ID,
			StaffID: &req.StaffID,
			Reason:  fmt.Sprintf("Order %d placed", order.ID),
		})
		if err != nil {
			return err
		}

		order.Items = make([]models.OrderItem, 0, len(agg.Lines))
		for _, line := range agg.Lines {
			item := models.OrderItem{
				OrderID:        order.ID,
				MenuItemID:     line.MenuItemID,
				PortionID:      line.PortionID,
				Quantity:       line.Quantity,
				UnitPrice:      line.UnitPrice,
				LineTotal:      line.LineTotal,
				SpecialRequest: line.SpecialRequest,
				MenuItemName:   line.Resolved.Portion.MenuItemName,
				PortionName:    line.Resolved.Portion.PortionName,
			}
			if _, err := s.orderRepo.CreateOrderItem(ctx, exec, &item); err != nil {
				return fmt.Errorf("failed to create order item (menu item %d, portion %d): %w", line.MenuItemID, line.PortionID, err)
			}
			order.Items = append(order.Items, item)
		}

		if req.Payment != nil {
			amount := req.Payment.Amount
			if amount.IsZero() {
				amount = order.TotalAmount
			}
			payment := models.Payment{OrderID: order.ID, Method: req.Payment.Method, Amount: amount}
			if _, err := s.paymentRepo.CreatePayment(ctx, exec, &payment); err != nil {
				return fmt.Errorf("failed to record payment: %w", err)
			}
			order.Payments = []models.Payment{payment}
		}
		return nil
	})
	if err != nil {
		logPlacementFailure(err, req)
		return nil, err
	}

	log.Info().
		Int64("order_id", order.ID).
		Int("table_number", order.TableNumber).
		Int64("staff_id", order.StaffID).
		Int("lines", len(order.Items)).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("Order placed")

	notifyLowStock(ctx, s.notifier, changes, &order.ID)
	return order, nil
}

func logPlacementFailure(err error, req PlaceOrderRequest) {
	if errors.Is(err, ErrIngredientNotFound) {
		log.Error().Err(err).Str("kind", "recipe_integrity").Int("table_number", req.TableNumber).Msg("Order placement aborted by recipe integrity fault")
		return
	}
	log.Debug().Err(err).Int("table_number", req.TableNumber).Msg("Order placement rejected")
}

// CancelOrder restores the stock a pending order consumed, recomputed from its lines and the
// current recipes, and marks the order cancelled in the same transaction.
func (s *orderService) CancelOrder(ctx context.Context, orderID int64, reason *string) (*models.Order, error) {
	var order *models.Order
	var changes []StockChange
	err := s.tx.WithinTx(ctx, func(exec database.Executor) error {
		var err error
		order, err = s.orderRepo.GetOrderForUpdate(ctx, exec, orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to fetch order for cancellation: %w", err)
		}
		if !CanTransition(order.Status, models.OrderStatusCancelled) {
			return &InvalidTransitionError{From: order.Status, To: models.OrderStatusCancelled}
		}

		items, err := s.orderRepo.GetOrderItemsByOrderID(ctx, exec, orderID)
		if err != nil {
			return fmt.Errorf("failed to fetch order items for stock return: %w", err)
		}
		lines := make([]OrderLine, 0, len(items))
		for _, it := range items {
			lines = append(lines, OrderLine{MenuItemID: it.MenuItemID, PortionID: it.PortionID, Quantity: it.Quantity})
		}

		agg, err := s.aggregator.Aggregate(ctx, exec, lines, ResolveHistorical)
		if err != nil {
			return fmt.Errorf("failed to recompute demand for order %d: %w", orderID, err)
		}
		s.warnOnRecipeDrift(ctx, exec, orderID, agg.Demand)

		changes, err = s.ledger.Increment(ctx, exec, agg.Demand, MovementRef{
			OrderID: &order.ID,
			StaffID: &order.StaffID,
			Reason:  fmt.Sprintf("Order %d cancelled", orderID),
		})
		if err != nil {
			return err
		}

		now := time.Now()
		if err := s.orderRepo.MarkCancelled(ctx, exec, orderID, reason, now); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to mark order cancelled: %w", err)
		}
		order.Status = models.OrderStatusCancelled
		order.CancelReason = reason
		order.CancelledAt = &now
		order.UpdatedAt = now
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("order_id", orderID).Int("ingredients_restored", len(changes)).Msg("Order cancelled")
	return order, nil
}

// warnOnRecipeDrift compares the recomputed restore amounts with what the sale movements
// actually deducted. A mismatch means a recipe was edited after the order was placed.
func (s *orderService) warnOnRecipeDrift(ctx context.Context, exec repositories.SQLExecutor, orderID int64, restore Demand) {
	sold, err := s.movementRepo.SumByOrder(ctx, exec, orderID, models.MovementTypeSale)
	if err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("Could not load sale movements for drift check")
		return
	}
	deducted := make(Demand, len(sold))
	for id, qty := range sold {
		deducted[id] = qty.Neg()
	}
	if !deducted.Equal(restore) {
		log.Warn().
			Str("kind", "recipe_drift").
			Int64("order_id", orderID).
			Interface("deducted", deducted).
			Interface("restoring", restore).
			Msg("Recipe changed since order was placed; restoring current recipe quantities")
	}
}

// UpdateOrderStatus advances an order one step along the kitchen progression.
// A request for cancelled is handled by CancelOrder.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID int64, req UpdateOrderStatusRequest) (*models.Order, error) {
	if !isValidOrderStatus(req.Status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, req.Status)
	}
	if req.Status == models.OrderStatusCancelled {
		return s.CancelOrder(ctx, orderID, req.Reason)
	}

	var order *models.Order
	err := s.tx.WithinTx(ctx, func(exec database.Executor) error {
		var err error
		order, err = s.orderRepo.GetOrderForUpdate(ctx, exec, orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to fetch order for status update: %w", err)
		}
		if !CanTransition(order.Status, req.Status) {
			return &InvalidTransitionError{From: order.Status, To: req.Status}
		}

		now := time.Now()
		if err := s.orderRepo.UpdateOrderStatus(ctx, exec, orderID, req.Status, now); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to update order status in repository: %w", err)
		}
		order.Status = req.Status
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("order_id", orderID).Str("status", order.Status).Msg("Order status updated")
	return order, nil
}

func (s *orderService) GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Status != nil && *filters.Status != "" && !isValidOrderStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidStatus, *filters.Status)
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	orders, totalCount, err := s.orderRepo.GetOrders(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, s.db, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID from repository: %w", err)
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items for order %d: %w", orderID, err)
	}
	order.Items = items

	payments, err := s.paymentRepo.GetPaymentsByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for order %d: %w", orderID, err)
	}
	order.Payments = payments

	if order.CustomerID != nil {
		customer, err := s.customerRepo.GetCustomerByID(ctx, s.db, *order.CustomerID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to get customer for order %d: %w", orderID, err)
		}
		order.Customer = customer
	}
	return order, nil
}
