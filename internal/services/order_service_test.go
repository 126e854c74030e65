package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
)

type fakeProductRepo struct {
	variants map[string]*models.ProductVariant
}

func (r *fakeProductRepo) Create(p *models.Product) error                       { return nil }
func (r *fakeProductRepo) GetByID(id string) (*models.Product, error)           { return nil, nil }
func (r *fakeProductRepo) GetBySlug(slug string) (*models.Product, error)       { return nil, nil }
func (r *fakeProductRepo) List(f models.ProductFilter) ([]*models.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) Update(p *models.Product) error { return nil }
func (r *fakeProductRepo) Delete(id string) error         { return nil }

func (r *fakeProductRepo) CreateVariant(v *models.ProductVariant) error { return nil }
func (r *fakeProductRepo) GetVariant(id string) (*models.ProductVariant, error) {
	return r.variants[id], nil
}
func (r *fakeProductRepo) ListVariants(productID string) ([]*models.ProductVariant, error) {
	return nil, nil
}
func (r *fakeProductRepo) UpdateVariant(v *models.ProductVariant) error { return nil }
func (r *fakeProductRepo) DeleteVariant(id string) error                { return nil }
func (r *fakeProductRepo) ListLowStock(threshold int) ([]*models.ProductVariant, error) {
	return nil, nil
}
func (r *fakeProductRepo) MarkLowStockAlerted(variantID string) error { return nil }

type fakeOrderRepo struct {
	created   *models.Order
	failStock bool
}

func (r *fakeOrderRepo) CreateWithItems(order *models.Order) error {
	if r.failStock {
		return repositories.ErrInsufficientStock
	}
	r.created = order
	return nil
}
func (r *fakeOrderRepo) GetByID(id string) (*models.Order, error) {
	if r.created != nil && r.created.ID == id {
		return r.created, nil
	}
	return nil, nil
}
func (r *fakeOrderRepo) GetByOrderNumber(number string) (*models.Order, error) { return nil, nil }
func (r *fakeOrderRepo) ListByUser(userID, limit, offset int) ([]*models.Order, error) {
	return nil, nil
}
func (r *fakeOrderRepo) ListAll(limit, offset int) ([]*models.Order, error) { return nil, nil }
func (r *fakeOrderRepo) UpdateStatus(id, status string) error {
	if r.created != nil && r.created.ID == id {
		r.created.Status = status
	}
	return nil
}

type fakeDispatcher struct {
	emails []int
	orders []string
}

func (d *fakeDispatcher) DispatchVerificationEmail(userID int) error {
	d.emails = append(d.emails, userID)
	return nil
}

func (d *fakeDispatcher) DispatchOrderConfirmation(orderID string) error {
	d.orders = append(d.orders, orderID)
	return nil
}

func orderFixture(failStock bool) (OrderService, *fakeOrderRepo, *fakeDispatcher) {
	products := &fakeProductRepo{variants: map[string]*models.ProductVariant{
		"v1": {ID: "v1", Price: 10.50, Stock: 100, IsActive: true},
		"v2": {ID: "v2", Price: 3.25, Stock: 100, IsActive: true},
		"vx": {ID: "vx", Price: 1.00, Stock: 0, IsActive: false},
	}}
	orders := &fakeOrderRepo{failStock: failStock}
	dispatcher := &fakeDispatcher{}
	return NewOrderService(orders, products, dispatcher), orders, dispatcher
}

func TestPlaceOrderPricesFromCatalog(t *testing.T) {
	svc, repo, dispatcher := orderFixture(false)

	order := &models.Order{UserID: 1, TaxAmount: 2, ShipAmount: 5, Discount: 1}
	err := svc.PlaceOrder(order, []OrderItemInput{
		{VariantID: "v1", Quantity: 2},
		{VariantID: "v2", Quantity: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.OrderNumber)
	// 2*10.50 + 4*3.25 + tax 2 + shipping 5 - discount 1
	assert.InDelta(t, 40.0, order.TotalAmount, 0.001)
	require.Len(t, order.Items, 2)
	assert.InDelta(t, 21.0, order.Items[0].TotalPrice, 0.001)

	require.NotNil(t, repo.created)
	require.Len(t, dispatcher.orders, 1)
	assert.Equal(t, order.ID, dispatcher.orders[0])
}

func TestPlaceOrderRejectsEmptyAndUnknown(t *testing.T) {
	svc, _, dispatcher := orderFixture(false)

	err := svc.PlaceOrder(&models.Order{UserID: 1}, nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	err = svc.PlaceOrder(&models.Order{UserID: 1}, []OrderItemInput{{VariantID: "nope", Quantity: 1}})
	assert.ErrorIs(t, err, ErrVariantNotFound)

	// inactive variants cannot be ordered
	err = svc.PlaceOrder(&models.Order{UserID: 1}, []OrderItemInput{{VariantID: "vx", Quantity: 1}})
	assert.ErrorIs(t, err, ErrVariantNotFound)

	assert.Empty(t, dispatcher.orders)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	svc, _, dispatcher := orderFixture(true)

	err := svc.PlaceOrder(&models.Order{UserID: 1}, []OrderItemInput{{VariantID: "v1", Quantity: 5}})
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)
	assert.Empty(t, dispatcher.orders, "no confirmation for a failed order")
}

func TestOrderStatusTransitions(t *testing.T) {
	svc, repo, _ := orderFixture(false)

	order := &models.Order{UserID: 1}
	require.NoError(t, svc.PlaceOrder(order, []OrderItemInput{{VariantID: "v1", Quantity: 1}}))

	require.NoError(t, svc.UpdateStatus(order.ID, models.OrderStatusConfirmed))
	assert.Equal(t, models.OrderStatusConfirmed, repo.created.Status)

	err := svc.UpdateStatus(order.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.ErrorIs(t, svc.UpdateStatus("missing", models.OrderStatusConfirmed), ErrOrderNotFound)
}
