package prices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrame(t *testing.T) {
	bySymbol := map[string]Series{
		"SPY": {
			row("SPY", "2012-01-04", 2, "yahoo"),
			row("SPY", "2012-01-03", 1, "yahoo"),
		},
		"GLD": {
			row("GLD", "2012-01-03", 10, "yahoo"),
		},
	}

	frame := NewFrame(bySymbol)

	require.Len(t, frame, 3)
	// Sorted by date then symbol
	assert.Equal(t, "GLD", frame[0].Symbol)
	assert.Equal(t, day("2012-01-03"), frame[0].Date)
	assert.Equal(t, "SPY", frame[1].Symbol)
	assert.Equal(t, day("2012-01-03"), frame[1].Date)
	assert.Equal(t, "SPY", frame[2].Symbol)
	assert.Equal(t, day("2012-01-04"), frame[2].Date)
}

func TestFrameSymbols(t *testing.T) {
	frame := Frame{
		row("SPY", "2012-01-03", 1, "yahoo"),
		row("GLD", "2012-01-03", 2, "yahoo"),
		row("SPY", "2012-01-04", 3, "yahoo"),
	}
	assert.Equal(t, []string{"GLD", "SPY"}, frame.Symbols())
}

func TestFrameBySymbol(t *testing.T) {
	frame := NewFrame(map[string]Series{
		"SPY": {
			row("SPY", "2012-01-03", 1, "yahoo"),
			row("SPY", "2012-01-04", 2, "yahoo"),
		},
		"GLD": {
			row("GLD", "2012-01-03", 10, "yahoo"),
		},
	})

	bySymbol := frame.BySymbol()
	require.Len(t, bySymbol, 2)
	assert.Len(t, bySymbol["SPY"], 2)
	assert.Len(t, bySymbol["GLD"], 1)
}

func TestFrameEmpty(t *testing.T) {
	assert.True(t, Frame{}.Empty())
	assert.True(t, NewFrame(nil).Empty())
	assert.False(t, Frame{row("SPY", "2012-01-03", 1, "yahoo")}.Empty())
}
