package trade

import (
	"errors"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixeltrade/pixeltrade/internal/model"
	"github.com/pixeltrade/pixeltrade/internal/tradestore"
	"github.com/pixeltrade/pixeltrade/pkg/tradecode"
)

func newTestService(t *testing.T) (*service, *tradestore.Store) {
	t.Helper()
	store, err := tradestore.Open(path.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store), store
}

func seedUser(t *testing.T, store *tradestore.Store, username string) *model.User {
	t.Helper()
	user := &model.User{
		ID:        model.UserID(model.CreateID()),
		CreatedAt: time.Now().UTC(),
		Username:  username,
		Name:      username + " name",
		Email:     username + "@example.com",
		Age:       20,
		Password:  "hashed",
	}
	require.NoError(t, store.CreateUser(user))
	return user
}

func validParams() *model.CreateTransactionParams {
	return &model.CreateTransactionParams{
		Title:          "Sell X account",
		Description:    "level 80 account with rare skins",
		Price:          1000,
		Kind:           model.KindBuySell,
		ExpirationTime: "24h",
	}
}

func TestCreate(t *testing.T) {
	assert := assert.New(t)
	service, store := newTestService(t)
	seller := seedUser(t, store, "seller")

	t.Run("Valid listing", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		assert.Nil(err)
		assert.Equal(model.StatusCreated, trade.Status)
		assert.Nil(trade.BuyerID)
		assert.Len(trade.Code, tradecode.Length)
		for _, r := range trade.Code {
			assert.True(strings.ContainsRune(tradecode.Alphabet, r))
		}
		assert.Equal(seller.ID, trade.SellerID)
		assert.Equal(trade.CreatedAt.Add(24*time.Hour), trade.ExpiresAt)

		steps, err := store.ListSteps(trade.ID)
		assert.Nil(err)
		assert.Len(steps, 1)
		assert.Equal(model.StepCreated, steps[0].Step)
		assert.Equal(seller.ID, steps[0].CompletedBy)
	})

	t.Run("Creation moves no funds", func(t *testing.T) {
		before, err := store.GetUser(seller.ID)
		assert.Nil(err)
		_, err = service.Create(seller.ID, validParams())
		assert.Nil(err)
		after, err := store.GetUser(seller.ID)
		assert.Nil(err)
		assert.Equal(before.Balance, after.Balance)
	})

	t.Run("Validation", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*model.CreateTransactionParams)
		}{
			{"short title", func(p *model.CreateTransactionParams) { p.Title = "abcd" }},
			{"short description", func(p *model.CreateTransactionParams) { p.Description = "too short" }},
			{"price below minimum", func(p *model.CreateTransactionParams) { p.Price = 99 }},
			{"unknown kind", func(p *model.CreateTransactionParams) { p.Kind = "barter" }},
			{"unknown expiration", func(p *model.CreateTransactionParams) { p.ExpirationTime = "12h" }},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				params := validParams()
				c.mutate(params)
				_, err := service.Create(seller.ID, params)
				var validation *model.ValidationError
				assert.ErrorAs(err, &validation)
			})
		}
	})
}

func TestJoin(t *testing.T) {
	assert := assert.New(t)
	service, store := newTestService(t)
	seller := seedUser(t, store, "seller")
	buyer := seedUser(t, store, "buyer")
	other := seedUser(t, store, "other")

	t.Run("Unknown code", func(t *testing.T) {
		_, err := service.Join(buyer.ID, "ZZZZZZ")
		assert.ErrorIs(err, model.ErrorNotFound)
	})

	t.Run("Join transitions to processing", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)

		joined, err := service.Join(buyer.ID, trade.Code)
		assert.Nil(err)
		assert.Equal(model.StatusProcessing, joined.Status)
		assert.NotNil(joined.BuyerID)
		assert.Equal(buyer.ID, *joined.BuyerID)

		steps, err := store.ListSteps(trade.ID)
		assert.Nil(err)
		assert.Len(steps, 2)
		assert.Equal(model.StepPaymentSent, steps[1].Step)
		assert.Equal(buyer.ID, steps[1].CompletedBy)
	})

	t.Run("Rejoin by same buyer is idempotent", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)
		first, err := service.Join(buyer.ID, trade.Code)
		require.NoError(t, err)

		again, err := service.Join(buyer.ID, trade.Code)
		assert.Nil(err)
		assert.Equal(first.ID, again.ID)
		assert.Equal(buyer.ID, *again.BuyerID)

		steps, err := store.ListSteps(trade.ID)
		assert.Nil(err)
		assert.Len(steps, 2, "rejoin must not append another payment step")
	})

	t.Run("Second buyer is rejected", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)
		_, err = service.Join(buyer.ID, trade.Code)
		require.NoError(t, err)

		_, err = service.Join(other.ID, trade.Code)
		assert.ErrorIs(err, model.ErrorAlreadyClaimed)
	})

	t.Run("Seller cannot join own listing", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)

		_, err = service.Join(seller.ID, trade.Code)
		assert.ErrorIs(err, model.ErrorSelfJoin)
	})

	t.Run("Expired listing rejects everyone", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)

		service.now = func() time.Time { return time.Now().UTC().Add(25 * time.Hour) }
		defer func() { service.now = func() time.Time { return time.Now().UTC() } }()

		_, err = service.Join(buyer.ID, trade.Code)
		assert.ErrorIs(err, model.ErrorExpired)
		_, err = service.Join(other.ID, trade.Code)
		assert.ErrorIs(err, model.ErrorExpired)
	})
}

func TestAccountHandoffAndConfirm(t *testing.T) {
	assert := assert.New(t)
	service, store := newTestService(t)
	seller := seedUser(t, store, "seller")
	buyer := seedUser(t, store, "buyer")
	outsider := seedUser(t, store, "outsider")

	setup := func(t *testing.T) *model.Transaction {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)
		_, err = service.Join(buyer.ID, trade.Code)
		require.NoError(t, err)
		return trade
	}

	t.Run("Only the seller sends details", func(t *testing.T) {
		trade := setup(t)
		assert.ErrorIs(service.SendAccountDetails(buyer.ID, trade.ID, "u/p"), model.ErrorForbidden)
		assert.ErrorIs(service.SendAccountDetails(outsider.ID, trade.ID, "u/p"), model.ErrorForbidden)
		assert.Nil(service.SendAccountDetails(seller.ID, trade.ID, "u/p"))
	})

	t.Run("Details require processing status", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)
		assert.ErrorIs(service.SendAccountDetails(seller.ID, trade.ID, "u/p"), model.ErrorInvalidState)
	})

	t.Run("Confirm before handoff fails", func(t *testing.T) {
		trade := setup(t)
		assert.ErrorIs(service.ConfirmReceipt(buyer.ID, trade.ID), model.ErrorInvalidState)
	})

	t.Run("Confirm succeeds exactly once and credits the seller", func(t *testing.T) {
		trade := setup(t)
		require.NoError(t, service.SendAccountDetails(seller.ID, trade.ID, "u/p"))

		before, err := store.GetUser(seller.ID)
		require.NoError(t, err)

		assert.ErrorIs(service.ConfirmReceipt(seller.ID, trade.ID), model.ErrorForbidden)
		assert.Nil(service.ConfirmReceipt(buyer.ID, trade.ID))

		after, err := store.GetUser(seller.ID)
		require.NoError(t, err)
		assert.Equal(before.Balance+trade.Price, after.Balance)

		assert.ErrorIs(service.ConfirmReceipt(buyer.ID, trade.ID), model.ErrorInvalidState)

		final, err := store.GetUser(seller.ID)
		require.NoError(t, err)
		assert.Equal(after.Balance, final.Balance)
	})
}

func TestCancel(t *testing.T) {
	assert := assert.New(t)
	service, store := newTestService(t)
	seller := seedUser(t, store, "seller")
	buyer := seedUser(t, store, "buyer")
	outsider := seedUser(t, store, "outsider")

	t.Run("Cancel of processing trade refunds the buyer", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)
		_, err = service.Join(buyer.ID, trade.Code)
		require.NoError(t, err)

		before, err := store.GetUser(buyer.ID)
		require.NoError(t, err)

		assert.Nil(service.Cancel(buyer.ID, trade.ID))

		after, err := store.GetUser(buyer.ID)
		require.NoError(t, err)
		assert.Equal(before.Balance+trade.Price, after.Balance)

		got, err := store.GetTransaction(trade.ID)
		require.NoError(t, err)
		assert.Equal(model.StatusCanceled, got.Status)
	})

	t.Run("Cancel of created trade moves no funds", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)

		sellerBefore, err := store.GetUser(seller.ID)
		require.NoError(t, err)
		buyerBefore, err := store.GetUser(buyer.ID)
		require.NoError(t, err)

		assert.Nil(service.Cancel(seller.ID, trade.ID))

		sellerAfter, err := store.GetUser(seller.ID)
		require.NoError(t, err)
		buyerAfter, err := store.GetUser(buyer.ID)
		require.NoError(t, err)
		assert.Equal(sellerBefore.Balance, sellerAfter.Balance)
		assert.Equal(buyerBefore.Balance, buyerAfter.Balance)
	})

	t.Run("Terminal states reject cancel", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)
		require.NoError(t, service.Cancel(seller.ID, trade.ID))
		assert.ErrorIs(service.Cancel(seller.ID, trade.ID), model.ErrorInvalidState)
	})

	t.Run("Outsider is forbidden", func(t *testing.T) {
		trade, err := service.Create(seller.ID, validParams())
		require.NoError(t, err)
		assert.ErrorIs(service.Cancel(outsider.ID, trade.ID), model.ErrorForbidden)
	})
}

func TestReport(t *testing.T) {
	assert := assert.New(t)
	service, store := newTestService(t)
	seller := seedUser(t, store, "seller")
	buyer := seedUser(t, store, "buyer")
	outsider := seedUser(t, store, "outsider")

	trade, err := service.Create(seller.ID, validParams())
	require.NoError(t, err)
	_, err = service.Join(buyer.ID, trade.Code)
	require.NoError(t, err)

	assert.ErrorIs(service.Report(outsider.ID, trade.ID, "scam"), model.ErrorForbidden)

	var validation *model.ValidationError
	assert.ErrorAs(service.Report(buyer.ID, trade.ID, "  "), &validation)

	assert.Nil(service.Report(buyer.ID, trade.ID, "seller unresponsive"))

	got, err := store.GetTransaction(trade.ID)
	require.NoError(t, err)
	assert.Equal(model.StatusProcessing, got.Status, "reporting must not change state")
}

func TestDetail(t *testing.T) {
	assert := assert.New(t)
	service, store := newTestService(t)
	seller := seedUser(t, store, "seller")
	buyer := seedUser(t, store, "buyer")
	outsider := seedUser(t, store, "outsider")

	trade, err := service.Create(seller.ID, validParams())
	require.NoError(t, err)
	_, err = service.Join(buyer.ID, trade.Code)
	require.NoError(t, err)
	require.NoError(t, service.SendAccountDetails(seller.ID, trade.ID, "u/p"))
	require.NoError(t, service.ConfirmReceipt(buyer.ID, trade.ID))

	t.Run("Participants see the progress view", func(t *testing.T) {
		detail, err := service.Detail(buyer.ID, trade.ID)
		assert.Nil(err)
		assert.Equal("seller name", detail.SellerName)
		assert.NotNil(detail.BuyerName)
		assert.Equal("buyer name", *detail.BuyerName)
		assert.Equal([]model.StepTag{
			model.StepCreated,
			model.StepPaymentSent,
			model.StepAccountSent,
			model.StepConfirmed,
			model.StepCompleted,
		}, detail.Steps)
		assert.NotNil(detail.PaymentSentAt)
		assert.NotNil(detail.AccountSentAt)
		assert.NotNil(detail.ConfirmedAt)
		assert.NotNil(detail.CompletedAt)

		_, err = service.Detail(seller.ID, trade.ID)
		assert.Nil(err)
	})

	t.Run("Outsider is forbidden", func(t *testing.T) {
		_, err := service.Detail(outsider.ID, trade.ID)
		assert.ErrorIs(err, model.ErrorForbidden)
	})

	t.Run("Missing transaction", func(t *testing.T) {
		_, err := service.Detail(buyer.ID, model.TransactionID("nope"))
		assert.ErrorIs(err, model.ErrorNotFound)
	})
}

func TestConcurrentConfirm(t *testing.T) {
	assert := assert.New(t)
	service, store := newTestService(t)
	seller := seedUser(t, store, "seller")
	buyer := seedUser(t, store, "buyer")

	trade, err := service.Create(seller.ID, validParams())
	require.NoError(t, err)
	_, err = service.Join(buyer.ID, trade.Code)
	require.NoError(t, err)
	require.NoError(t, service.SendAccountDetails(seller.ID, trade.ID, "u/p"))

	before, err := store.GetUser(seller.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = service.ConfirmReceipt(buyer.ID, trade.ID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		losing := errors.Is(err, model.ErrorInvalidState) || errors.Is(err, model.ErrorConflict)
		assert.True(losing, "losing call should fail with InvalidState or Conflict, got %v", err)
	}
	assert.Equal(1, successes, "exactly one confirm must win")

	after, err := store.GetUser(seller.ID)
	require.NoError(t, err)
	assert.Equal(before.Balance+trade.Price, after.Balance, "seller credited exactly once")
}

func TestEndToEnd(t *testing.T) {
	assert := assert.New(t)
	service, store := newTestService(t)
	seller := seedUser(t, store, "seller")
	buyer := seedUser(t, store, "buyer")

	trade, err := service.Create(seller.ID, &model.CreateTransactionParams{
		Title:          "Sell X",
		Description:    "ten+ chars",
		Price:          1000,
		Kind:           model.KindBuySell,
		ExpirationTime: "24h",
	})
	require.NoError(t, err)

	_, err = service.Join(buyer.ID, trade.Code)
	require.NoError(t, err)
	require.NoError(t, service.SendAccountDetails(seller.ID, trade.ID, "u/p"))
	require.NoError(t, service.ConfirmReceipt(buyer.ID, trade.ID))

	got, err := store.GetTransaction(trade.ID)
	require.NoError(t, err)
	assert.Equal(model.StatusCompleted, got.Status)

	sellerAfter, err := store.GetUser(seller.ID)
	require.NoError(t, err)
	assert.Equal(int64(1000), sellerAfter.Balance)

	steps, err := store.ListSteps(trade.ID)
	require.NoError(t, err)
	tags := make([]model.StepTag, 0, len(steps))
	for _, step := range steps {
		tags = append(tags, step.Step)
	}
	assert.Equal([]model.StepTag{
		model.StepCreated,
		model.StepPaymentSent,
		model.StepAccountSent,
		model.StepConfirmed,
		model.StepCompleted,
	}, tags)
}
