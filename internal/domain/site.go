package domain

import (
	"fmt"
	"strconv"
)

// utmZoneSRID maps the MGA zones appearing in the survey workbooks onto
// GDA94 SRIDs.
var utmZoneSRID = map[int]int{
	54: 28354,
	55: 28355,
	56: 28356,
}

// sentinelLabels are header/template row markers that must never become
// records.
var sentinelLabels = map[string]struct{}{
	"Site":        {},
	"Site Number": {},
}

// IsSentinelLabel reports whether a site/visit identifier cell holds a
// template header value rather than data.
func IsSentinelLabel(label string) bool {
	_, ok := sentinelLabels[label]
	return ok
}

// SiteColumns declares which physical columns supply each site field. An
// empty column reference means the field is not tracked for this worksheet.
type SiteColumns struct {
	SiteLabel string `yaml:"site_label"`

	Elevation           string `yaml:"elevation"`
	LocationDescription string `yaml:"location_description"`
	GPSUncertaintyM     string `yaml:"gps_uncertainty_m"`
	GPSGeomDescription  string `yaml:"gps_geom_description"`

	// Geographic coordinates (SRID 4326). When several columns are listed
	// the last one wins, matching the layout of sheets that repeat the
	// coordinate per visit.
	Lons []string `yaml:"lons"`
	Lats []string `yaml:"lats"`

	// Projected UTM coordinates; the SRID comes from the zone column or the
	// fixed zone.
	Eastings     []string `yaml:"eastings"`
	Northings    []string `yaml:"northings"`
	UTMZone      string   `yaml:"utm_zone"`
	FixedUTMZone int      `yaml:"fixed_utm_zone"`
}

// Columns lists every physical column the site builder reads.
func (c SiteColumns) Columns() []string {
	cols := []string{c.SiteLabel, c.Elevation, c.LocationDescription,
		c.GPSUncertaintyM, c.GPSGeomDescription, c.UTMZone}
	cols = append(cols, c.Lons...)
	cols = append(cols, c.Lats...)
	cols = append(cols, c.Eastings...)
	cols = append(cols, c.Northings...)
	return compactColumns(cols)
}

// BuildSiteRecords builds the site record for one worksheet row. Header rows
// and rows without a site label produce nothing.
func BuildSiteRecords(row SheetRow, cols SiteColumns) []SiteRecord {
	label := row.Cell(cols.SiteLabel).Text()
	if label == "" || IsSentinelLabel(label) {
		return nil
	}
	rec := SiteRecord{SiteLabel: label}

	if cols.Elevation != "" {
		if c := row.Cell(cols.Elevation); !c.Empty() && !c.IsNA() {
			if v, ok := c.Float(); ok {
				rec.Elevation = &v
			}
		}
	}
	if cols.LocationDescription != "" {
		if c := row.Cell(cols.LocationDescription); !c.Empty() && !c.IsNA() {
			rec.LocationDescription = c.Text()
		}
	}
	if cols.GPSUncertaintyM != "" {
		if c := row.Cell(cols.GPSUncertaintyM); !c.Empty() && !c.IsNA() {
			if v, ok := c.Float(); ok {
				rec.GPSUncertaintyM = &v
			}
		}
	}
	if cols.GPSGeomDescription != "" {
		if c := row.Cell(cols.GPSGeomDescription); !c.Empty() && !c.IsNA() {
			rec.GPSGeomDescription = c.Text()
		}
	}

	// Presence is tracked explicitly so a legitimate coordinate of 0 is not
	// treated as absent.
	var x, y *float64
	srid := 0
	if len(cols.Lons) > 0 && len(cols.Lats) > 0 {
		x = lastCoordinate(row, cols.Lons)
		y = lastCoordinate(row, cols.Lats)
		srid = 4326
	}
	if len(cols.Eastings) > 0 && len(cols.Northings) > 0 {
		x = lastCoordinate(row, cols.Eastings)
		y = lastCoordinate(row, cols.Northings)
		zone := cols.FixedUTMZone
		if zone == 0 && cols.UTMZone != "" {
			zone, _ = row.Cell(cols.UTMZone).Int()
		}
		srid = utmZoneSRID[zone]
	}
	if srid != 0 && x != nil && y != nil {
		// Plain decimal rendering; %v would turn UTM northings into
		// scientific notation.
		rec.Geom = fmt.Sprintf("ST_GeomFromText('POINT(%s %s)', %d)",
			strconv.FormatFloat(*x, 'f', -1, 64),
			strconv.FormatFloat(*y, 'f', -1, 64), srid)
	}

	return []SiteRecord{rec}
}

// lastCoordinate returns the value of the last listed coordinate column.
func lastCoordinate(row SheetRow, columns []string) *float64 {
	var out *float64
	for _, col := range columns {
		if v, ok := row.Cell(col).Float(); ok {
			value := v
			out = &value
		} else {
			out = nil
		}
	}
	return out
}
