package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummariseValues(t *testing.T) {
	t.Run("ordered by weight with share brackets", func(t *testing.T) {
		values := []string{"Epicormic", "Basal", "Lignotuber", "Epicormic"}
		weights := []float64{10, 1, 0.8, 5}
		// shares: Epicormic 15/16.8, Basal 1/16.8 (~6%), Lignotuber 0.8/16.8 (~4.8%)
		assert.Equal(t, "Epicormic / (Basal) / [Lignotuber]", SummariseValues(values, weights))
	})

	t.Run("missing weights default to one", func(t *testing.T) {
		assert.Equal(t, "None / All", SummariseValues([]string{"None", "None", "All"}, nil))
	})

	t.Run("null values marked with asterisk", func(t *testing.T) {
		assert.Equal(t, "All *", SummariseValues([]string{"All", ""}, []float64{10, 1}))
	})

	t.Run("only nulls", func(t *testing.T) {
		assert.Equal(t, "*", SummariseValues([]string{""}, []float64{0}))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", SummariseValues(nil, nil))
	})
}

func TestSummariseTriplet(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	t.Run("full triplet", func(t *testing.T) {
		got := SummariseTriplet([]*float64{v(4), v(6)}, []*float64{v(2), v(3)}, []*float64{v(8), v(9)})
		assert.Equal(t, "5.0 (2.0 -- 9.0)", got)
	})

	t.Run("missing best keeps bounds", func(t *testing.T) {
		got := SummariseTriplet(nil, []*float64{v(2)}, []*float64{v(9)})
		assert.Equal(t, "(2.0 -- 9.0)", got)
	})

	t.Run("missing bounds keep best", func(t *testing.T) {
		got := SummariseTriplet([]*float64{v(4)}, nil, nil)
		assert.Equal(t, "4.0", got)
	})

	t.Run("one-sided bound rendered with placeholder", func(t *testing.T) {
		got := SummariseTriplet([]*float64{v(4)}, []*float64{v(2)}, nil)
		assert.Equal(t, "4.0 (2.0 -- ?)", got)
	})

	t.Run("nil entries ignored", func(t *testing.T) {
		got := SummariseTriplet([]*float64{nil, v(4)}, []*float64{nil}, []*float64{nil, v(9)})
		assert.Equal(t, "4.0 (? -- 9.0)", got)
	})

	t.Run("nothing at all", func(t *testing.T) {
		assert.Equal(t, "*", SummariseTriplet(nil, nil, nil))
	})
}
