package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)
	return gormDB, mock
}

func testCartItem(sessionID, productID, variantID string, qty int) *models.CartItem {
	return &models.CartItem{
		SessionID:       sessionID,
		ProductID:       productID,
		VariantID:       variantID,
		Quantity:        qty,
		ProductName:     "Mug",
		UnitPriceCents:  1500,
		Currency:        "usd",
		TotalPriceCents: 1500 * int64(qty),
		ExpiresAt:       time.Now().Add(time.Hour),
	}
}

func cartItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "session_id", "product_id", "variant_id", "quantity",
		"product_name", "unit_price_cents", "currency", "image_url",
		"total_price_cents", "expires_at", "created_at", "updated_at",
	})
}

func TestList_ReturnsSessionLines(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	now := time.Now()
	rows := cartItemRows().
		AddRow(uuid.New(), "sess-1", "sku-1", "", 2, "Mug", 1500, "usd", "", 3000, now.Add(time.Hour), now, now).
		AddRow(uuid.New(), "sess-1", "sku-2", "size-l", 1, "Tee", 2500, "usd", "", 2500, now.Add(time.Hour), now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cart_items"`)).
		WithArgs("sess-1").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), "sess-1")
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "sku-1", items[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetItem_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cart_items"`)).
		WillReturnRows(cartItemRows())

	item, err := repo.GetItem(context.Background(), "sess-1", "sku-1", "")
	assert.ErrorIs(t, err, repository.ErrItemNotFound)
	assert.Nil(t, item)
}

func TestUpsert_InsertsWithConflictClause(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cart_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.Upsert(context.Background(), testCartItem("sess-1", "sku-1", "", 2))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetQuantity_UpdatesExistingLine(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cart_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetQuantity(context.Background(), "sess-1", "sku-1", "", 3, 4500)
	assert.NoError(t, err)
}

func TestSetQuantity_AbsentLine(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cart_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.SetQuantity(context.Background(), "sess-1", "sku-1", "", 3, 4500)
	assert.ErrorIs(t, err, repository.ErrItemNotFound)
}

func TestRemove_AbsentLineIsNoop(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "cart_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Remove(context.Background(), "sess-1", "sku-1", "")
	assert.NoError(t, err)
}

func TestDeleteExpired_ReportsCount(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "cart_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectCommit()

	n, err := repo.DeleteExpired(context.Background(), time.Now())
	assert.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
