package brush

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapperRoundTrip(t *testing.T) {
	mappers := []Mapper{
		NewMapper([2]float64{0, 100}, 200),
		NewMapper([2]float64{-50, 50}, 73),
		NewMapper([2]float64{0.001, 0.002}, 1000),
		NewMapper([2]float64{1e6, 2e9}, 31),
	}

	for _, m := range mappers {
		for i := 0; i <= 20; i++ {
			v := m.Min + (m.Max-m.Min)*float64(i)/20
			got := m.ToValue(m.ToPixel(v))
			assert.InDelta(t, v, got, math.Abs(m.Max-m.Min)*1e-12, "mapper %+v value %v", m, v)
		}
	}
}

func TestMapperConversions(t *testing.T) {
	m := NewMapper([2]float64{0, 100}, 200)

	assert.Equal(t, 100.0, m.ToPixel(50))
	assert.Equal(t, 25.0, m.ToValue(50))
	assert.Equal(t, 0.0, m.ToPixel(0))
	assert.Equal(t, 200.0, m.ToPixel(100))
}

func TestMapperValid(t *testing.T) {
	tests := []struct {
		name string
		m    Mapper
		want bool
	}{
		{"normal", NewMapper([2]float64{0, 1}, 10), true},
		{"zero width", NewMapper([2]float64{0, 1}, 0), false},
		{"collapsed range", NewMapper([2]float64{3, 3}, 10), false},
		{"nan width", NewMapper([2]float64{0, 1}, math.NaN()), false},
		{"nan bound", NewMapper([2]float64{math.NaN(), 1}, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.Valid())
		})
	}
}

func TestMapperSelection(t *testing.T) {
	m := NewMapper([2]float64{0, 10}, 100)

	sel, ok := m.Selection(2, 7, true)
	assert.True(t, ok)
	assert.Equal(t, Selection{P0: 20, P1: 70}, sel)

	sel, ok = m.Selection(2, 7, false)
	assert.True(t, ok)
	assert.Equal(t, Selection{P0: 20, P1: 21}, sel)

	_, ok = NewMapper([2]float64{0, 10}, 0).Selection(2, 7, true)
	assert.False(t, ok)
}

func TestSelectionHelpers(t *testing.T) {
	assert.True(t, Selection{P0: 4, P1: 4}.Empty())
	assert.False(t, Selection{P0: 4, P1: 5}.Empty())
	assert.Equal(t, Selection{P0: 1, P1: 9}, Selection{P0: 9, P1: 1}.Ordered())
}
