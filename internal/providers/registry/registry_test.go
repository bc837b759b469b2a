package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/histfeed/histfeed/internal/providers/testhelper"
	"github.com/histfeed/histfeed/pkg/calendar"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/instructions"
	"github.com/histfeed/histfeed/pkg/providers"
)

func TestCatalog(t *testing.T) {
	assert.True(t, Has(providers.IDYahoo))
	assert.True(t, Has(providers.IDAlphavantage))
	assert.True(t, Has(providers.IDEODHistoricalData))
	assert.True(t, Has(providers.IDMarketstack))
	assert.False(t, Has(providers.ID("bloomberg")))

	assert.Equal(t, []providers.ID{
		providers.IDAlphavantage,
		providers.IDEODHistoricalData,
		providers.IDMarketstack,
		providers.IDYahoo,
	}, List())

	assert.False(t, RequiresKey(providers.IDYahoo))
	assert.True(t, RequiresKey(providers.IDAlphavantage))
}

func TestForInstructionYahoo(t *testing.T) {
	r := New()
	inst := instructions.Instruction{Symbol: "SPY", Source: "yahoo"}

	client, err := r.ForInstruction(inst, calendar.Weekdays())
	require.NoError(t, err)
	assert.Equal(t, providers.IDYahoo, client.ID())
}

func TestForInstructionKeyedProvider(t *testing.T) {
	r := New()
	inst := instructions.Instruction{Symbol: "SPY", Source: "alphavantage", APIKey: "inline-key"}

	client, err := r.ForInstruction(inst, calendar.Weekdays())
	require.NoError(t, err)
	assert.Equal(t, providers.IDAlphavantage, client.ID())
}

func TestForInstructionKeyFromEnvironment(t *testing.T) {
	t.Setenv("ALPHAVANTAGE_API_KEY", "env-key")

	r := New()
	inst := instructions.Instruction{Symbol: "SPY", Source: "alphavantage"}

	client, err := r.ForInstruction(inst, calendar.Weekdays())
	require.NoError(t, err)
	assert.Equal(t, providers.IDAlphavantage, client.ID())
}

func TestForInstructionMissingKey(t *testing.T) {
	t.Setenv("ALPHAVANTAGE_API_KEY", "")

	r := New()
	inst := instructions.Instruction{Symbol: "SPY", Source: "alphavantage"}

	_, err := r.ForInstruction(inst, calendar.Weekdays())
	require.Error(t, err)
	assert.True(t, errors.IsAPIKeyError(err))
	assert.Contains(t, err.Error(), "ALPHAVANTAGE_API_KEY")
}

func TestForInstructionUnknownProvider(t *testing.T) {
	r := New()
	inst := instructions.Instruction{Symbol: "SPY", Source: "bloomberg"}

	_, err := r.ForInstruction(inst, calendar.Weekdays())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestForInstructionComposite(t *testing.T) {
	r := New()
	inst := instructions.Instruction{Symbol: "SPY", Source: "alphavantage_yahoo", APIKey: "inline-key"}

	client, err := r.ForInstruction(inst, calendar.Weekdays())
	require.NoError(t, err)
	assert.Equal(t, providers.ID("alphavantage_yahoo"), client.ID())
}

func TestForInstructionCompositeMissingPrimaryKey(t *testing.T) {
	t.Setenv("EODHISTORICALDATA_API_KEY", "")

	r := New()
	inst := instructions.Instruction{Symbol: "SPY", Source: "eodhistoricaldata_yahoo"}

	_, err := r.ForInstruction(inst, calendar.Weekdays())
	require.Error(t, err)
	assert.True(t, errors.IsAPIKeyError(err))
}

func TestRegisterOverride(t *testing.T) {
	fake := testhelper.NewFakeClient(providers.IDAlphavantage)
	fake.SetSeries("SPY", testhelper.BusinessSeries("SPY", calendar.Weekdays(),
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), "alphavantage"))

	r := New()
	r.Register(fake)

	// The override wins even without an API key.
	inst := instructions.Instruction{Symbol: "SPY", Source: "alphavantage"}
	client, err := r.ForInstruction(inst, calendar.Weekdays())
	require.NoError(t, err)

	rows, err := client.Daily(context.Background(), "SPY",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, 1, fake.CallCount())
}

func TestLimiterSharedAcrossBuilds(t *testing.T) {
	r := New()
	inst := instructions.Instruction{Symbol: "SPY", Source: "alphavantage", APIKey: "inline-key"}

	_, err := r.ForInstruction(inst, calendar.Weekdays())
	require.NoError(t, err)
	first := r.limiters[providers.IDAlphavantage]
	require.NotNil(t, first)

	inst.Symbol = "IWM"
	_, err = r.ForInstruction(inst, calendar.Weekdays())
	require.NoError(t, err)
	assert.Same(t, first, r.limiters[providers.IDAlphavantage])
}

func TestLimiterBudgetFromParams(t *testing.T) {
	r := New()
	inst := instructions.Instruction{
		Symbol: "SPY",
		Source: "marketstack",
		APIKey: "inline-key",
		Params: map[string]string{"max_req_per_min": "2"},
	}

	_, err := r.ForInstruction(inst, calendar.Weekdays())
	require.NoError(t, err)
	require.NotNil(t, r.limiters[providers.IDMarketstack])
}

func TestYahooUncapped(t *testing.T) {
	r := New()
	inst := instructions.Instruction{Symbol: "SPY", Source: "yahoo"}

	_, err := r.ForInstruction(inst, calendar.Weekdays())
	require.NoError(t, err)
	assert.Nil(t, r.limiters[providers.IDYahoo])
}
