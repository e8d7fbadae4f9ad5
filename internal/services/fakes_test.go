package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"restaurant_pos_backend/internal/database"
	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/repositories"
)

// fakeStore is an in-memory database implementing every repository interface the services use.
type fakeStore struct {
	mu sync.Mutex

	portions    map[[2]int64]models.MenuItemPortion
	recipes     map[int64][]models.RecipeLine
	ingredients map[int64]models.Ingredient
	orders      map[int64]models.Order
	items       []models.OrderItem
	movements   []models.InventoryMovement
	customers   map[int64]models.Customer
	payments    []models.Payment

	nextID int64

	createItemErr error
	lockCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		portions:    map[[2]int64]models.MenuItemPortion{},
		recipes:     map[int64][]models.RecipeLine{},
		ingredients: map[int64]models.Ingredient{},
		orders:      map[int64]models.Order{},
		customers:   map[int64]models.Customer{},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fakeStore) addIngredient(id int64, name, unit, stock, reorder string) {
	f.ingredients[id] = models.Ingredient{ID: id, Name: name, Unit: unit, CurrentStock: dec(stock), ReorderLevel: dec(reorder)}
}

func (f *fakeStore) addPortion(mipID, menuItemID, portionID int64, price string, recipe map[int64]string) {
	f.portions[[2]int64{menuItemID, portionID}] = models.MenuItemPortion{
		ID: mipID, MenuItemID: menuItemID, PortionID: portionID, Price: dec(price),
		MenuItemName: "item", MenuItemActive: true, PortionName: "portion", PortionActive: true,
	}
	lines := []models.RecipeLine{}
	for ingID, qty := range recipe {
		lines = append(lines, models.RecipeLine{MenuItemPortionID: mipID, IngredientID: ingID, Quantity: dec(qty)})
	}
	f.recipes[mipID] = lines
}

func (f *fakeStore) setRecipeQuantity(mipID, ingredientID int64, qty string) {
	for i, l := range f.recipes[mipID] {
		if l.IngredientID == ingredientID {
			f.recipes[mipID][i].Quantity = dec(qty)
		}
	}
}

func (f *fakeStore) stock(id int64) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ingredients[id].CurrentStock
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

type snapshot struct {
	ingredients map[int64]models.Ingredient
	orders      map[int64]models.Order
	items       []models.OrderItem
	movements   []models.InventoryMovement
	customers   map[int64]models.Customer
	payments    []models.Payment
}

func (f *fakeStore) snapshot() snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := snapshot{
		ingredients: make(map[int64]models.Ingredient, len(f.ingredients)),
		orders:      make(map[int64]models.Order, len(f.orders)),
		items:       append([]models.OrderItem(nil), f.items...),
		movements:   append([]models.InventoryMovement(nil), f.movements...),
		customers:   make(map[int64]models.Customer, len(f.customers)),
		payments:    append([]models.Payment(nil), f.payments...),
	}
	for k, v := range f.ingredients {
		s.ingredients[k] = v
	}
	for k, v := range f.orders {
		s.orders[k] = v
	}
	for k, v := range f.customers {
		s.customers[k] = v
	}
	return s
}

func (f *fakeStore) restore(s snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ingredients, f.orders, f.items = s.ingredients, s.orders, s.items
	f.movements, f.customers, f.payments = s.movements, s.customers, s.payments
}

// fakeTransactor serialises transactions, the way row locks serialise conflicting ones,
// and rolls the store back when fn fails.
type fakeTransactor struct {
	mu    sync.Mutex
	store *fakeStore
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(exec database.Executor) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// --- MenuRepository ---

func (f *fakeStore) GetMenuItemPortion(ctx context.Context, _ repositories.SQLExecutor, menuItemID, portionID int64) (*models.MenuItemPortion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mip, ok := f.portions[[2]int64{menuItemID, portionID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &mip, nil
}

func (f *fakeStore) GetRecipeLines(ctx context.Context, _ repositories.SQLExecutor, mipID int64) ([]models.RecipeLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.RecipeLine(nil), f.recipes[mipID]...), nil
}

// --- IngredientRepository ---

func (f *fakeStore) LockIngredients(ctx context.Context, exec repositories.SQLExecutor, ids []int64) ([]models.Ingredient, error) {
	f.mu.Lock()
	f.lockCalls++
	f.mu.Unlock()
	return f.GetIngredientsByIDs(ctx, exec, ids)
}

func (f *fakeStore) GetIngredientsByIDs(ctx context.Context, _ repositories.SQLExecutor, ids []int64) ([]models.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Ingredient{}
	for _, id := range ids {
		if ing, ok := f.ingredients[id]; ok {
			out = append(out, ing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetIngredientByID(ctx context.Context, _ repositories.SQLExecutor, id int64) (*models.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ing, ok := f.ingredients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &ing, nil
}

func (f *fakeStore) DecrementStock(ctx context.Context, _ repositories.SQLExecutor, id int64, qty decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ing, ok := f.ingredients[id]
	if !ok || ing.CurrentStock.LessThan(qty) {
		return decimal.Zero, repositories.ErrStockTooLow
	}
	ing.CurrentStock = ing.CurrentStock.Sub(qty)
	f.ingredients[id] = ing
	return ing.CurrentStock, nil
}

func (f *fakeStore) IncrementStock(ctx context.Context, _ repositories.SQLExecutor, id int64, qty decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ing, ok := f.ingredients[id]
	if !ok {
		return decimal.Zero, repositories.ErrNotFound
	}
	ing.CurrentStock = ing.CurrentStock.Add(qty)
	f.ingredients[id] = ing
	return ing.CurrentStock, nil
}

func (f *fakeStore) ListIngredients(ctx context.Context, lowStockOnly bool) ([]models.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Ingredient{}
	for _, ing := range f.ingredients {
		if lowStockOnly && ing.CurrentStock.GreaterThan(ing.ReorderLevel) {
			continue
		}
		out = append(out, ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- OrderRepository ---

func (f *fakeStore) CreateOrder(ctx context.Context, _ repositories.SQLExecutor, order *models.Order) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = f.id()
	stored := *order
	stored.Items, stored.Payments, stored.Customer = nil, nil, nil
	f.orders[order.ID] = stored
	return order.ID, nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, _ repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &o, nil
}

func (f *fakeStore) GetOrderForUpdate(ctx context.Context, exec repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	return f.GetOrderByID(ctx, exec, orderID)
}

func (f *fakeStore) GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if filters.Status != nil && *filters.Status != "" && o.Status != *filters.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, _ repositories.SQLExecutor, orderID int64, status string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Status, o.UpdatedAt = status, at
	f.orders[orderID] = o
	return nil
}

func (f *fakeStore) MarkCancelled(ctx context.Context, _ repositories.SQLExecutor, orderID int64, reason *string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Status, o.CancelReason, o.CancelledAt, o.UpdatedAt = models.OrderStatusCancelled, reason, &at, at
	f.orders[orderID] = o
	return nil
}

func (f *fakeStore) CreateOrderItem(ctx context.Context, _ repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createItemErr != nil {
		return 0, f.createItemErr
	}
	item.ID = f.id()
	f.items = append(f.items, *item)
	return item.ID, nil
}

func (f *fakeStore) GetOrderItemsByOrderID(ctx context.Context, _ repositories.SQLExecutor, orderID int64) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.OrderItem{}
	for _, it := range f.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

// --- InventoryMovementRepository ---

func (f *fakeStore) CreateMovement(ctx context.Context, _ repositories.SQLExecutor, m *models.InventoryMovement) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.id()
	f.movements = append(f.movements, *m)
	return m.ID, nil
}

func (f *fakeStore) GetMovements(ctx context.Context, filters models.MovementFilters) ([]models.InventoryMovement, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.InventoryMovement{}
	for _, m := range f.movements {
		if filters.IngredientID != nil && m.IngredientID != *filters.IngredientID {
			continue
		}
		out = append(out, m)
	}
	return out, len(out), nil
}

func (f *fakeStore) SumByOrder(ctx context.Context, _ repositories.SQLExecutor, orderID int64, movementType string) (map[int64]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sums := map[int64]decimal.Decimal{}
	for _, m := range f.movements {
		if m.OrderID == nil || *m.OrderID != orderID || m.MovementType != movementType {
			continue
		}
		sums[m.IngredientID] = sums[m.IngredientID].Add(m.QuantityChanged)
	}
	return sums, nil
}

// --- CustomerRepository / PaymentRepository ---

func (f *fakeStore) UpsertCustomer(ctx context.Context, _ repositories.SQLExecutor, c *models.Customer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.PhoneNumber != nil {
		for id, existing := range f.customers {
			if existing.PhoneNumber != nil && *existing.PhoneNumber == *c.PhoneNumber {
				c.ID = id
				f.customers[id] = *c
				return id, nil
			}
		}
	}
	c.ID = f.id()
	f.customers[c.ID] = *c
	return c.ID, nil
}

func (f *fakeStore) GetCustomerByID(ctx context.Context, _ repositories.SQLExecutor, id int64) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, _ repositories.SQLExecutor, p *models.Payment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.id()
	f.payments = append(f.payments, *p)
	return p.ID, nil
}

func (f *fakeStore) GetPaymentsByOrderID(ctx context.Context, _ repositories.SQLExecutor, orderID int64) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Payment{}
	for _, p := range f.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []models.LowStockAlert
}

func (n *recordingNotifier) NotifyLowStock(ctx context.Context, alert models.LowStockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

type testEnv struct {
	store        *fakeStore
	notifier     *recordingNotifier
	ledger       *StockLedger
	aggregator   *RequirementAggregator
	orders       OrderService
	inventory    InventoryService
	availability AvailabilityService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	tx := &fakeTransactor{store: store}
	notifier := &recordingNotifier{}
	resolver := NewRecipeResolver(store)
	aggregator := NewRequirementAggregator(resolver)
	ledger := NewStockLedger(tx, store, store)
	return &testEnv{
		store:        store,
		notifier:     notifier,
		ledger:       ledger,
		aggregator:   aggregator,
		orders:       NewOrderService(tx, nil, store, store, store, store, aggregator, ledger, notifier),
		inventory:    NewInventoryService(store, store, ledger, notifier),
		availability: NewAvailabilityService(nil, resolver, store),
	}
}

// Ingredient and menu ids shared by the tests.
const (
	riceID    int64 = 1
	chickenID int64 = 2
	oilID     int64 = 3

	friedRiceID int64 = 10
	curryID     int64 = 11
	waterID     int64 = 12

	smallID int64 = 1
	largeID int64 = 2
)

// seedRestaurant builds the Fried Rice / Large scenario plus a curry sharing rice.
func (e *testEnv) seedRestaurant() {
	e.store.addIngredient(riceID, "Rice", "g", "1000", "200")
	e.store.addIngredient(chickenID, "Chicken", "g", "500", "100")
	e.store.addIngredient(oilID, "Oil", "ml", "300", "50")

	e.store.addPortion(100, friedRiceID, largeID, "12.50", map[int64]string{riceID: "300"})
	e.store.addPortion(101, friedRiceID, smallID, "8.00", map[int64]string{riceID: "150", oilID: "10"})
	e.store.addPortion(102, curryID, largeID, "15.00", map[int64]string{riceID: "200", chickenID: "150", oilID: "20"})
	e.store.addPortion(103, waterID, smallID, "1.00", nil)
}
