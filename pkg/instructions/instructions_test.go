package instructions_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/histfeed/histfeed/internal/utils/ptr"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/instructions"
	"github.com/histfeed/histfeed/pkg/prices/store"
)

func TestDefault(t *testing.T) {
	in := instructions.Default()
	assert.Equal(t, "yahoo", in.Source)
	assert.True(t, in.Save)
	assert.False(t, in.Force)
	assert.Equal(t, "outDir", in.Dir)
	assert.Equal(t, store.CSV, in.Format)
}

func TestResolve(t *testing.T) {
	t.Run("generic applies to all symbols", func(t *testing.T) {
		generic := instructions.Default()
		generic.Source = "alphavantage"
		generic.APIKey = "demo"

		resolved, err := instructions.Resolve([]string{"SPY", "GLD"}, generic, nil)
		require.NoError(t, err)
		require.Len(t, resolved, 2)

		assert.Equal(t, "SPY", resolved[0].Symbol)
		assert.Equal(t, "GLD", resolved[1].Symbol)
		for _, in := range resolved {
			assert.Equal(t, "alphavantage", in.Source)
			assert.Equal(t, "demo", in.APIKey)
			assert.True(t, in.Save)
		}
	})

	t.Run("override fields win and unset fields inherit", func(t *testing.T) {
		generic := instructions.Default()
		overrides := map[string]instructions.Override{
			"GLD": {
				Source: ptr.String("eodhistoricaldata"),
				Force:  ptr.Bool(true),
				Format: ptr.To(store.JSON),
			},
		}

		resolved, err := instructions.Resolve([]string{"SPY", "GLD"}, generic, overrides)
		require.NoError(t, err)
		require.Len(t, resolved, 2)

		spy, gld := resolved[0], resolved[1]
		assert.Equal(t, "yahoo", spy.Source)
		assert.False(t, spy.Force)

		assert.Equal(t, "eodhistoricaldata", gld.Source)
		assert.True(t, gld.Force)
		assert.Equal(t, store.JSON, gld.Format)
		// Inherited from generic
		assert.True(t, gld.Save)
		assert.Equal(t, "outDir", gld.Dir)
	})

	t.Run("override-only symbols join the request", func(t *testing.T) {
		overrides := map[string]instructions.Override{
			"XLF": {Source: ptr.String("marketstack")},
			"IWM": {},
		}

		resolved, err := instructions.Resolve([]string{"SPY"}, instructions.Default(), overrides)
		require.NoError(t, err)
		require.Len(t, resolved, 3)

		// Listed symbols keep their order; override-only symbols follow, sorted
		assert.Equal(t, "SPY", resolved[0].Symbol)
		assert.Equal(t, "IWM", resolved[1].Symbol)
		assert.Equal(t, "XLF", resolved[2].Symbol)
		assert.Equal(t, "marketstack", resolved[2].Source)
		assert.Equal(t, "yahoo", resolved[1].Source)
	})

	t.Run("blank symbols are skipped", func(t *testing.T) {
		resolved, err := instructions.Resolve([]string{"  ", "SPY", ""}, instructions.Default(), nil)
		require.NoError(t, err)
		require.Len(t, resolved, 1)
		assert.Equal(t, "SPY", resolved[0].Symbol)
	})

	t.Run("all blank symbols yield empty result without error", func(t *testing.T) {
		resolved, err := instructions.Resolve([]string{"", "   "}, instructions.Default(), nil)
		require.NoError(t, err)
		assert.Empty(t, resolved)
	})

	t.Run("duplicate symbols resolve once", func(t *testing.T) {
		resolved, err := instructions.Resolve([]string{"SPY", "SPY", "GLD"}, instructions.Default(), nil)
		require.NoError(t, err)
		assert.Len(t, resolved, 2)
	})

	t.Run("symbols are trimmed", func(t *testing.T) {
		resolved, err := instructions.Resolve([]string{" SPY "}, instructions.Default(), nil)
		require.NoError(t, err)
		require.Len(t, resolved, 1)
		assert.Equal(t, "SPY", resolved[0].Symbol)
	})

	t.Run("invalid generic fails resolution", func(t *testing.T) {
		generic := instructions.Default()
		generic.Format = store.Format("feather")

		_, err := instructions.Resolve([]string{"SPY"}, generic, nil)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("invalid override fails resolution", func(t *testing.T) {
		overrides := map[string]instructions.Override{
			"SPY": {Dir: ptr.String(""), Save: ptr.Bool(true)},
		}

		_, err := instructions.Resolve([]string{"SPY"}, instructions.Default(), overrides)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*instructions.Instruction)
		wantErr bool
	}{
		{"valid default", func(in *instructions.Instruction) {}, false},
		{"empty symbol", func(in *instructions.Instruction) { in.Symbol = "" }, true},
		{"empty source", func(in *instructions.Instruction) { in.Source = " " }, true},
		{"bad format", func(in *instructions.Instruction) { in.Format = "feather" }, true},
		{"save without dir", func(in *instructions.Instruction) { in.Dir = "" }, true},
		{"no dir needed without save", func(in *instructions.Instruction) { in.Dir = ""; in.Save = false }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := instructions.Default()
			in.Symbol = "SPY"
			tc.mutate(&in)

			err := in.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCachePath(t *testing.T) {
	in := instructions.Default()
	in.Symbol = "SPY"
	in.Dir = "data"
	in.Format = store.Parquet

	assert.Equal(t, filepath.Join("data", "SPY.parquet"), in.CachePath())
}

func TestMaxReqPerMin(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		in := instructions.Default()
		_, ok := in.MaxReqPerMin()
		assert.False(t, ok)
	})

	t.Run("present", func(t *testing.T) {
		in := instructions.Default()
		in.Params = map[string]string{"max_req_per_min": "5"}
		n, ok := in.MaxReqPerMin()
		require.True(t, ok)
		assert.Equal(t, 5, n)
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		for _, raw := range []string{"zero", "-1", "0", ""} {
			in := instructions.Default()
			in.Params = map[string]string{"max_req_per_min": raw}
			_, ok := in.MaxReqPerMin()
			assert.False(t, ok, "value %q should be ignored", raw)
		}
	})
}
