package repositories

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcore/internal/models"
)

func testOrder() *models.Order {
	return &models.Order{
		ID:          "ord-1",
		OrderNumber: "ORD-20260901-AAAA1111",
		UserID:      1,
		Status:      models.OrderStatusPending,
		TotalAmount: 21.0,
		Items: []*models.OrderItem{
			{ID: "item-1", OrderID: "ord-1", VariantID: "var-1", Quantity: 2, UnitPrice: 10.5, TotalPrice: 21.0},
		},
	}
}

func TestCreateWithItemsDecrementsStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("stock = stock - $1")).
		WithArgs(2, "var-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateWithItems(testOrder()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithItemsInsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// guarded update matches no row when stock would go negative
	mock.ExpectExec(regexp.QuoteMeta("stock = stock - $1")).
		WithArgs(2, "var-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.CreateWithItems(testOrder())
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}
