package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFireHistoryRecords(t *testing.T) {
	events := []FireEventColumns{
		{SiteLabel: "A", FireDate: "B", FireType: "C"},
		{SiteLabel: "A", FireDate: "D", FireType: "E"},
	}

	t.Run("one record per recorded event", func(t *testing.T) {
		row := SheetRow{
			"A": {Value: "CC01"},
			"B": {Value: 2019},
			"C": {Value: "Wildfire"},
			"D": {Value: "1990-95"},
			"E": {Value: "Prescribed burn"},
		}
		recs := BuildFireHistoryRecords(row, events)
		require.Len(t, recs, 2)

		assert.Equal(t, "CC01", recs[0].SiteLabel)
		assert.Equal(t, "Wildfire", recs[0].FireType)
		assert.Equal(t, "2019", recs[0].FireDate)
		assert.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), *recs[0].EarliestDate)
		assert.Equal(t, time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC), *recs[0].LatestDate)

		assert.Equal(t, "1990-95", recs[1].FireDate)
		assert.Equal(t, time.Date(1995, 12, 31, 0, 0, 0, 0, time.UTC), *recs[1].LatestDate)
		assert.Equal(t, []string{"Fire date given as: 1990-95"}, recs[1].Notes)
	})

	t.Run("events with only a label are skipped", func(t *testing.T) {
		row := SheetRow{"A": {Value: "CC01"}, "B": {Value: 2019}, "C": {Value: "Wildfire"}}
		recs := BuildFireHistoryRecords(row, events)
		assert.Len(t, recs, 1)
	})

	t.Run("sentinel label skipped", func(t *testing.T) {
		row := SheetRow{"A": {Value: "Site"}, "B": {Value: 2019}}
		assert.Empty(t, BuildFireHistoryRecords(row, events))
	})
}
