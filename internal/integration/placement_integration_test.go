//go:build integration

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"restaurant_pos_backend/internal/database"
	"restaurant_pos_backend/internal/events"
	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/repositories"
	"restaurant_pos_backend/internal/services"
)

type engine struct {
	db        *sql.DB
	orders    services.OrderService
	inventory services.InventoryService
}

func TestPlacementAndCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	pgC, cfg := startPostgres(ctx, t)
	defer terminateContainer(t, pgC)

	rabbitC, rabbitURL := startRabbitMQ(ctx, t)
	defer terminateContainer(t, rabbitC)

	require.NoError(t, database.RunMigrations(cfg, database.Up))
	db, err := database.Open(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	publisher, err := events.NewAMQPPublisher(rabbitURL)
	require.NoError(t, err)
	defer publisher.Close()
	alerts := consumeLowStock(ctx, t, rabbitURL)

	e := newEngine(db, publisher)
	menuItemID, portionID := seedMenu(ctx, t, db)

	t.Run("concurrent placements never oversell", func(t *testing.T) {
		var wg sync.WaitGroup
		var mu sync.Mutex
		placed, rejected := 0, 0
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(table int) {
				defer wg.Done()
				_, err := e.orders.PlaceOrder(ctx, services.PlaceOrderRequest{
					TableNumber: table,
					StaffID:     7,
					Lines:       []services.OrderLine{{MenuItemID: menuItemID, PortionID: portionID, Quantity: 1}},
				})
				mu.Lock()
				defer mu.Unlock()
				var stockErr *services.InsufficientStockError
				switch {
				case err == nil:
					placed++
				case errors.As(err, &stockErr):
					rejected++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i + 1)
		}
		wg.Wait()

		require.Equal(t, 3, placed)
		require.Equal(t, 7, rejected)
		require.True(t, stockOf(ctx, t, db, "Rice").Equal(decimal.NewFromInt(100)))

		var sales int
		require.NoError(t, db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM inventory_movements WHERE movement_type = $1 AND order_id IS NOT NULL`,
			models.MovementTypeSale).Scan(&sales))
		require.Equal(t, 3, sales)
	})

	t.Run("low stock alert is published", func(t *testing.T) {
		select {
		case alert := <-alerts:
			require.Equal(t, "Rice", alert.Payload.Ingredient)
			require.Equal(t, events.LowStockEventName, alert.EventName)
		case <-ctx.Done():
			t.Fatal("no low stock alert received")
		}
	})

	t.Run("cancellation restores stock", func(t *testing.T) {
		orders, _, err := e.orders.GetOrders(ctx, models.OrderFilters{})
		require.NoError(t, err)
		require.NotEmpty(t, orders)

		cancelled, err := e.orders.CancelOrder(ctx, orders[0].ID, nil)
		require.NoError(t, err)
		require.Equal(t, models.OrderStatusCancelled, cancelled.Status)
		require.True(t, stockOf(ctx, t, db, "Rice").Equal(decimal.NewFromInt(400)))

		_, err = e.orders.CancelOrder(ctx, orders[0].ID, nil)
		var transErr *services.InvalidTransitionError
		require.ErrorAs(t, err, &transErr)
		require.True(t, stockOf(ctx, t, db, "Rice").Equal(decimal.NewFromInt(400)))
	})

	t.Run("manual adjustment cannot go negative", func(t *testing.T) {
		ingredients, err := e.inventory.ListIngredients(ctx, false)
		require.NoError(t, err)
		require.Len(t, ingredients, 1)

		_, err = e.inventory.RemoveStock(ctx, ingredients[0].ID, services.StockAdjustmentRequest{
			Quantity: decimal.NewFromInt(401), Reason: "spoilage",
		}, nil)
		var stockErr *services.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		require.True(t, stockOf(ctx, t, db, "Rice").Equal(decimal.NewFromInt(400)))
	})
}

func newEngine(db *sql.DB, notifier services.LowStockNotifier) engine {
	ingredientRepo := repositories.NewIngredientRepository(db)
	movementRepo := repositories.NewInventoryMovementRepository(db)
	tx := database.NewTransactor(db)
	ledger := services.NewStockLedger(tx, ingredientRepo, movementRepo)
	aggregator := services.NewRequirementAggregator(services.NewRecipeResolver(repositories.NewMenuRepository()))

	return engine{
		db: db,
		orders: services.NewOrderService(tx, db, repositories.NewOrderRepository(db), repositories.NewCustomerRepository(),
			repositories.NewPaymentRepository(), movementRepo, aggregator, ledger, notifier),
		inventory: services.NewInventoryService(ingredientRepo, movementRepo, ledger, notifier),
	}
}

// seedMenu creates Fried Rice (Large) needing 300 g of rice, with 1000 g in stock and a 200 g reorder level.
func seedMenu(ctx context.Context, t *testing.T, db *sql.DB) (menuItemID, portionID int64) {
	t.Helper()
	var ingredientID, mipID int64
	require.NoError(t, db.QueryRowContext(ctx,
		`INSERT INTO ingredients (name, unit, current_stock, reorder_level) VALUES ('Rice', 'g', 1000, 200) RETURNING id`).Scan(&ingredientID))
	require.NoError(t, db.QueryRowContext(ctx,
		`INSERT INTO menu_items (name) VALUES ('Fried Rice') RETURNING id`).Scan(&menuItemID))
	require.NoError(t, db.QueryRowContext(ctx,
		`INSERT INTO portions (name) VALUES ('Large') RETURNING id`).Scan(&portionID))
	require.NoError(t, db.QueryRowContext(ctx,
		`INSERT INTO menu_item_portions (menu_item_id, portion_id, price) VALUES ($1, $2, 12.50) RETURNING id`,
		menuItemID, portionID).Scan(&mipID))
	_, err := db.ExecContext(ctx,
		`INSERT INTO recipe_lines (menu_item_portion_id, ingredient_id, quantity) VALUES ($1, $2, 300)`, mipID, ingredientID)
	require.NoError(t, err)
	return menuItemID, portionID
}

func stockOf(ctx context.Context, t *testing.T, db *sql.DB, name string) decimal.Decimal {
	t.Helper()
	var stock decimal.Decimal
	require.NoError(t, db.QueryRowContext(ctx, `SELECT current_stock FROM ingredients WHERE name = $1`, name).Scan(&stock))
	return stock
}

func consumeLowStock(ctx context.Context, t *testing.T, url string) <-chan events.Envelope[models.LowStockAlert] {
	t.Helper()
	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := conn.Channel()
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, events.LowStockRoutingKey, events.Exchange, false, nil))
	deliveries, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	out := make(chan events.Envelope[models.LowStockAlert], 4)
	go func() {
		for d := range deliveries {
			var env events.Envelope[models.LowStockAlert]
			if err := json.Unmarshal(d.Body, &env); err == nil {
				out <- env
			}
		}
	}()
	return out
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, database.Config) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "restaurant_pos"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return container, database.Config{
		Host:     host,
		Port:     mappedPort.Port(),
		User:     "postgres",
		Password: "postgres",
		DBName:   "restaurant_pos",
		SSLMode:  "disable",
	}
}

func startRabbitMQ(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return container, fmt.Sprintf("amqp://guest:guest@%s:%s/", host, mappedPort.Port())
}

func terminateContainer(t *testing.T, c testcontainers.Container) {
	t.Helper()
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Terminate(terminateCtx))
}
