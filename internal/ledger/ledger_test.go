package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/repository"
	"github.com/bingitech/pressroom/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (Ledger, repository.CostEntryRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteCostEntryRepo(database)
	return New(repo), repo
}

func TestLedger_Record_AssignsID(t *testing.T) {
	led, repo := newTestLedger(t)
	ctx := context.Background()

	entry := testutil.NewTestCostEntry("openai", "text_generation")
	entry.ID = ""
	id, err := led.Record(ctx, entry)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entry.Service, got.Service)
	assert.True(t, entry.Amount.Equal(got.Amount))
}

func TestLedger_Record_RejectsMalformed(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.CostEntry)
	}{
		{"missing service", func(e *domain.CostEntry) { e.Service = "" }},
		{"missing operation", func(e *domain.CostEntry) { e.Operation = "" }},
		{"negative amount", func(e *domain.CostEntry) { e.Amount = decimal.NewFromInt(-1) }},
		{"lowercase currency", func(e *domain.CostEntry) { e.Currency = "usd" }},
		{"negative units", func(e *domain.CostEntry) { e.UnitCount = -2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := testutil.NewTestCostEntry("openai", "text_generation")
			tc.mutate(entry)
			_, err := led.Record(ctx, entry)
			require.Error(t, err)
			var lerr *LedgerError
			assert.ErrorAs(t, err, &lerr)
		})
	}
}

func TestLedger_Report_GroupsByServiceAndCurrency(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	record := func(service, op, amount, currency string) {
		t.Helper()
		entry := testutil.NewTestCostEntry(service, op,
			testutil.WithAmount(amount),
			testutil.WithCurrency(currency),
			testutil.WithTimestamp(base),
		)
		_, err := led.Record(ctx, entry)
		require.NoError(t, err)
	}

	record("openai", "text_generation", "0.03", "USD")
	record("openai", "text_generation", "0.045", "USD")
	record("ideogram", "image_generation_quality", "0.32", "USD")
	record("ideogram", "image_generation_fast", "0.08", "USD")

	report, err := led.Report(ctx, domain.CostWindow{
		From: base.Add(-time.Hour),
		To:   base.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, report.Services, 2)
	assert.Equal(t, 4, report.EntryCount)

	// sorted by service name
	ideogram := report.Services[0]
	openai := report.Services[1]

	assert.Equal(t, "ideogram", ideogram.Service)
	assert.Equal(t, "0.4", ideogram.Total.String())
	assert.Equal(t, []string{"image_generation_fast", "image_generation_quality"}, ideogram.Operations)

	assert.Equal(t, "openai", openai.Service)
	assert.Equal(t, "0.075", openai.Total.String())
	assert.Equal(t, 2, openai.EntryCount)

	total, err := report.Total("USD")
	require.NoError(t, err)
	assert.Equal(t, "0.475", total.String())
}

func TestLedger_Report_WindowIsHalfOpen(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	for _, ts := range []time.Time{from.Add(-time.Nanosecond), from, to.Add(-time.Nanosecond), to} {
		entry := testutil.NewTestCostEntry("openai", "text_generation", testutil.WithTimestamp(ts))
		_, err := led.Record(ctx, entry)
		require.NoError(t, err)
	}

	report, err := led.Report(ctx, domain.CostWindow{From: from, To: to})
	require.NoError(t, err)
	assert.Equal(t, 2, report.EntryCount, "boundary start included, boundary end excluded")
}

func TestLedger_Report_RejectsInvertedWindow(t *testing.T) {
	led, _ := newTestLedger(t)
	now := time.Now().UTC()

	_, err := led.Report(context.Background(), domain.CostWindow{From: now, To: now})
	require.Error(t, err)
	var lerr *LedgerError
	assert.ErrorAs(t, err, &lerr)
}

func TestLedger_Report_MixedCurrenciesRefuseSingleTotal(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, currency := range []string{"USD", "EUR"} {
		entry := testutil.NewTestCostEntry("openai", "text_generation",
			testutil.WithCurrency(currency),
			testutil.WithTimestamp(base),
		)
		_, err := led.Record(ctx, entry)
		require.NoError(t, err)
	}

	report, err := led.Report(ctx, domain.CostWindow{
		From: base.Add(-time.Hour),
		To:   base.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"USD", "EUR"}, report.Currencies())

	_, err = report.Total("USD")
	assert.Error(t, err)
}

// The report sum must equal the arithmetic sum of the recorded amounts
// exactly, across enough entries that accumulated float drift would show.
func TestLedger_Report_ExactSumAcrossManyEntries(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// 0.01 + 0.02 + 0.03 repeating; floats would drift, decimals must not.
	amounts := []string{"0.01", "0.02", "0.03", "0.0001", "0.16"}
	expected := decimal.Zero
	for i := 0; i < 10000; i++ {
		amount := amounts[i%len(amounts)]
		entry := testutil.NewTestCostEntry("openai", "text_generation",
			testutil.WithAmount(amount),
			testutil.WithTimestamp(base.Add(time.Duration(i)*time.Millisecond)),
		)
		_, err := led.Record(ctx, entry)
		require.NoError(t, err)
		expected = expected.Add(decimal.RequireFromString(amount))
	}

	report, err := led.Report(ctx, domain.CostWindow{From: base, To: base.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Equal(t, 10000, report.EntryCount)

	total, err := report.Total("USD")
	require.NoError(t, err)
	assert.True(t, expected.Equal(total),
		"expected exact total %s, got %s", expected, total)
}

func TestDayWindow(t *testing.T) {
	ts := time.Date(2026, 3, 15, 17, 45, 12, 0, time.UTC)
	w := DayWindow(ts)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), w.To)
	assert.True(t, w.Contains(ts))
	assert.False(t, w.Contains(w.To))
}

func TestAggregate_EmptyWindow(t *testing.T) {
	w := DayWindow(time.Now().UTC())
	report := Aggregate(w, nil)
	assert.Zero(t, report.EntryCount)
	assert.Empty(t, report.Services)

	total, err := report.Total("USD")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func ExampleAggregate() {
	w := domain.CostWindow{
		From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	entries := []*domain.CostEntry{
		{Service: "openai", Operation: "text_generation", Amount: decimal.RequireFromString("0.03"), Currency: "USD", Timestamp: w.From},
		{Service: "openai", Operation: "text_generation", Amount: decimal.RequireFromString("0.03"), Currency: "USD", Timestamp: w.From},
	}
	report := Aggregate(w, entries)
	total, _ := report.Total("USD")
	fmt.Println(total)
	// Output: 0.06
}
