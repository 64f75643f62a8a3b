package services

import (
	"context"
	"strings"
	"testing"

	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_PurchaseHistory(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	history := NewHistoryService(db, nil)
	txns := NewTransactionService(db, nil, nil)
	owner := testutil.CreateUser(t, db, models.RoleUser)
	other := testutil.CreateUser(t, db, models.RoleUser)
	product := testutil.CreateProduct(t, db, "Soap", 100, 0)

	first := testutil.CreateTransaction(t, db, owner.ID, models.StatusOnShipment, map[uint]int{product.ID: 1})
	second := testutil.CreateTransaction(t, db, owner.ID, models.StatusOnShipment, map[uint]int{product.ID: 2})
	testutil.CreateTransaction(t, db, owner.ID, models.StatusPending, map[uint]int{product.ID: 3})

	_, err := txns.Transition(ctx, first.ID, owner.Identity(), models.StatusCompleted)
	require.NoError(t, err)
	_, err = txns.Transition(ctx, second.ID, owner.Identity(), models.StatusCompleted)
	require.NoError(t, err)
	require.NoError(t, db.Delete(product).Error)

	entries, err := history.PurchaseHistory(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2, "only completed transactions appear")
	assert.Equal(t, second.ID, entries[0].TransactionID, "newest first")
	require.NotNil(t, entries[0].Transaction)
	require.Len(t, entries[0].Transaction.Items, 1)
	require.NotNil(t, entries[0].Transaction.Items[0].Product)
	assert.Equal(t, "Soap", entries[0].Transaction.Items[0].Product.Name)

	none, err := history.PurchaseHistory(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHistoryService_SearchHistory(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewHistoryService(db, nil)
	user := testutil.CreateUser(t, db, models.RoleUser)

	_, err := svc.RecordSearch(ctx, user.ID, "bamboo")
	require.NoError(t, err)
	entry, err := svc.RecordSearch(ctx, user.ID, "  tote bag ")
	require.NoError(t, err)
	assert.Equal(t, "tote bag", entry.SearchQuery)

	_, err = svc.RecordSearch(ctx, user.ID, "   ")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.RecordSearch(ctx, user.ID, strings.Repeat("a", MaxSearchQueryLength+1))
	assert.ErrorIs(t, err, ErrValidationFailed)

	entries, err := svc.SearchHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "tote bag", entries[0].SearchQuery)
	assert.Equal(t, "bamboo", entries[1].SearchQuery)
}

func TestHistoryService_RecordSearch_CountsCharactersNotBytes(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewHistoryService(db, nil)
	user := testutil.CreateUser(t, db, models.RoleUser)

	atLimit := strings.Repeat("é", MaxSearchQueryLength)
	entry, err := svc.RecordSearch(ctx, user.ID, atLimit)
	require.NoError(t, err)
	assert.Equal(t, atLimit, entry.SearchQuery)

	_, err = svc.RecordSearch(ctx, user.ID, strings.Repeat("日", MaxSearchQueryLength+1))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestBankService(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	images := NewMockImageService()
	svc := NewBankService(db, images)

	_, err := svc.Create(ctx, BankInput{Name: strPtr("BCA")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "account_number")
	assert.Contains(t, verr.Fields, "account_holder")
	assert.Contains(t, verr.Fields, "payment_instructions")

	bank, err := svc.Create(ctx, BankInput{
		Name:                strPtr("BCA"),
		AccountNumber:       strPtr("1234567890"),
		AccountHolder:       strPtr("PT Ecotainment"),
		PaymentInstructions: strPtr("Transfer the exact amount."),
		Logo:                newFileHeader(t, "logo", "bca.png", []byte("logo")),
	})
	require.NoError(t, err)
	require.NotNil(t, bank.Logo)
	assert.NotNil(t, bank.LogoURL)
	logo := *bank.Logo

	updated, err := svc.Update(ctx, bank.ID, BankInput{AccountHolder: strPtr("Ecotainment Ltd")})
	require.NoError(t, err)
	assert.Equal(t, "Ecotainment Ltd", updated.AccountHolder)
	assert.Equal(t, "BCA", updated.Name)

	banks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, banks, 1)

	require.NoError(t, svc.Delete(ctx, bank.ID))
	assert.False(t, images.ImageExists(logo), "deleting a bank releases its logo")

	_, err = svc.Get(ctx, bank.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, bank.ID, BankInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}
