package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	"github.com/omerfdemir/teklifix-backend/pkg/enums"
	"github.com/omerfdemir/teklifix-backend/pkg/pagination"
	"github.com/omerfdemir/teklifix-backend/pkg/types"
)

func setupQuotesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	quotes := `
CREATE TABLE IF NOT EXISTS quotes (
  id TEXT PRIMARY KEY,
  customer_name TEXT NOT NULL,
  company TEXT,
  email TEXT NOT NULL,
  phone TEXT,
  message TEXT,
  file_name TEXT,
  items TEXT NOT NULL,
  pricing TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  admin_note TEXT,
  selected_items TEXT,
  converted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(quotes).Error)
	// shared cache carries rows across tests in this package
	require.NoError(t, db.Exec("DELETE FROM quotes").Error)
	return db
}

func createTestQuote(t *testing.T, db *gorm.DB, email string, status enums.QuoteStatus, created time.Time) *models.Quote {
	t.Helper()

	quote := &models.Quote{
		ID:           uuid.New(),
		CustomerName: "Ada Kaya",
		Email:        email,
		Status:       status,
		Items: types.QuoteItems{
			{ProductID: "p-1", ProductName: "Packing Tape", Quantity: 40},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(quote).Error)
	return quote
}

func TestQuoteRoundTripPreservesItems(t *testing.T) {
	db := setupQuotesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := createTestQuote(t, db, "ada@example.com", enums.QuoteStatusPending, time.Now().UTC())

	loaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "p-1", loaded.Items[0].ProductID)
	assert.Equal(t, 40, loaded.Items[0].Quantity)
	assert.Equal(t, enums.QuoteStatusPending, loaded.Status)
}

func TestQuoteUpdatePersistsStatusAndNote(t *testing.T) {
	db := setupQuotesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	quote := createTestQuote(t, db, "ada@example.com", enums.QuoteStatusPending, time.Now().UTC())

	note := "needs bulk price check"
	quote.Status = enums.QuoteStatusUnderReview
	quote.AdminNote = &note
	_, err := repo.Update(ctx, quote)
	require.NoError(t, err)

	loaded, err := repo.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.QuoteStatusUnderReview, loaded.Status)
	require.NotNil(t, loaded.AdminNote)
	assert.Equal(t, note, *loaded.AdminNote)
}

func TestListQuotesFiltersAndPaginates(t *testing.T) {
	db := setupQuotesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	createTestQuote(t, db, "ada@example.com", enums.QuoteStatusPending, base)
	createTestQuote(t, db, "ada@example.com", enums.QuoteStatusPriced, base.Add(time.Minute))
	createTestQuote(t, db, "bora@example.com", enums.QuoteStatusPending, base.Add(2*time.Minute))

	all, err := repo.List(ctx, QuoteFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "bora@example.com", all[0].Email)

	pending := enums.QuoteStatusPending
	filtered, err := repo.List(ctx, QuoteFilter{Status: &pending, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	mine, err := repo.List(ctx, QuoteFilter{Email: "ada@example.com", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	page, err := repo.List(ctx, QuoteFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)

	cursor := &pagination.Cursor{CreatedAt: page[0].CreatedAt, ID: page[0].ID}
	rest, err := repo.List(ctx, QuoteFilter{Limit: 10, Cursor: cursor})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestGetByIDMissingRow(t *testing.T) {
	db := setupQuotesTestDB(t)
	repo := NewRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
