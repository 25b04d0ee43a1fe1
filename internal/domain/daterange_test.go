package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ymd(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestParseFireDate(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		earliest *time.Time
		latest   *time.Time
		notes    []string
	}{
		{
			name:     "bare year expands to its bounds",
			value:    2001,
			earliest: ymd(2001, time.January, 1),
			latest:   ymd(2001, time.December, 31),
		},
		{
			name:     "year as string",
			value:    "2001",
			earliest: ymd(2001, time.January, 1),
			latest:   ymd(2001, time.December, 31),
		},
		{
			name:  "zero year means missing",
			value: 0,
			notes: []string{"Fire date is missing or empty"},
		},
		{
			name:     "full year range",
			value:    "1990-1995",
			earliest: ymd(1990, time.January, 1),
			latest:   ymd(1995, time.December, 31),
			notes:    []string{"Fire date given as: 1990-1995"},
		},
		{
			name:     "two-digit second year borrows the century",
			value:    "1990-95",
			earliest: ymd(1990, time.January, 1),
			latest:   ymd(1995, time.December, 31),
			notes:    []string{"Fire date given as: 1990-95"},
		},
		{
			name:  "greater-than year keeps only the note trail",
			value: ">1995",
			notes: []string{"Fire date given as: >1995", "max/min value given"},
		},
		{
			name:     "both bound markers each get a note",
			value:    ">1990-<1995",
			earliest: ymd(1990, time.January, 1),
			latest:   ymd(1995, time.December, 31),
			notes:    []string{"Fire date given as: >1990-<1995", "max/min value given", "max/min value given"},
		},
		{
			name:  "unparseable text is preserved with a note",
			value: "before European settlement",
			notes: []string{"Fire date given as: before European settlement"},
		},
		{
			name:     "exact date collapses both bounds",
			value:    "08/02/2022",
			earliest: ymd(2022, time.February, 8),
			latest:   ymd(2022, time.February, 8),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := ParseFireDate(tc.value)
			if tc.earliest == nil {
				assert.Nil(t, r.Earliest)
			} else {
				require.NotNil(t, r.Earliest)
				assert.Equal(t, *tc.earliest, *r.Earliest)
			}
			if tc.latest == nil {
				assert.Nil(t, r.Latest)
			} else {
				require.NotNil(t, r.Latest)
				assert.Equal(t, *tc.latest, *r.Latest)
			}
			assert.Equal(t, tc.notes, r.Notes)
		})
	}
}

func TestParseFireDate_NativeTime(t *testing.T) {
	r := ParseFireDate(time.Date(2019, 11, 3, 9, 0, 0, 0, time.UTC))
	require.NotNil(t, r.Earliest)
	require.NotNil(t, r.Latest)
	assert.Equal(t, *r.Earliest, *r.Latest)
	assert.Equal(t, "2019-11-03", r.Raw)
}
