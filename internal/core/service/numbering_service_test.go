package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/storefront/commerce-api/internal/core/domain"
)

var numberPattern = regexp.MustCompile(`^[A-Z]+-\d{4}-\d{4,}$`)

func TestNumberingService_NextFormatsPerPeriod(t *testing.T) {
	counter := newStubCounter()
	svc, err := NewNumberingService(counter)
	require.NoError(t, err)

	ctx := context.Background()
	march := time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)

	first, err := svc.Next(ctx, InvoicePrefix, march)
	require.NoError(t, err)
	second, err := svc.Next(ctx, InvoicePrefix, march)
	require.NoError(t, err)
	bill, err := svc.Next(ctx, BillPrefix, march)
	require.NoError(t, err)
	april, err := svc.Next(ctx, InvoicePrefix, march.Add(2*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, "INV-2503-0001", first)
	assert.Equal(t, "INV-2503-0002", second)
	assert.Equal(t, "BILL-2503-0001", bill)
	assert.Equal(t, "INV-2504-0001", april, "sequence restarts with the month")
	assert.Equal(t, int64(2), counter.values["INV:2503"])
}

func TestNumberingService_WidensPastFourDigits(t *testing.T) {
	counter := newStubCounter()
	counter.values["INV:2503"] = 9999
	svc, err := NewNumberingService(counter)
	require.NoError(t, err)

	number, err := svc.Next(context.Background(), InvoicePrefix, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "INV-2503-10000", number)
	assert.Regexp(t, numberPattern, number)
}

func TestNumberingService_RejectsEmptyPrefix(t *testing.T) {
	svc, err := NewNumberingService(newStubCounter())
	require.NoError(t, err)

	_, err = svc.Next(context.Background(), "  ", fixedNow)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNumberingService_PropagatesCounterFailure(t *testing.T) {
	counter := newStubCounter()
	counter.err = errors.New("store down")
	svc, err := NewNumberingService(counter)
	require.NoError(t, err)

	_, err = svc.Next(context.Background(), BillPrefix, fixedNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestNumberingService_RequiresCounter(t *testing.T) {
	_, err := NewNumberingService(nil)
	assert.Error(t, err)
}

func TestNumberingService_ConcurrentCallsYieldDistinctNumbers(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, err := NewNumberingService(newStubCounter())
	require.NoError(t, err)

	const n = 64
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]struct{}, n)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := svc.Next(context.Background(), InvoicePrefix, fixedNow)
			if err != nil {
				t.Errorf("next: %v", err)
				return
			}
			mu.Lock()
			numbers[number] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, n)
}
