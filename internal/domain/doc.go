// Package domain models fire-ecology field survey and literature trait data
// extracted from curated spreadsheets.
//
// # Data Sources
//
// Field survey workbooks hold one worksheet per form: site descriptions,
// visit logs, quadrat samples, fire history and fire intensity measurements.
// Row 1 is a header row; data starts at row 2. Template rows carry the
// literal label "Site" (or "Site Number") in the identifier column and are
// skipped by every builder.
//
// Literature trait workbooks (NSW Fire Flora Research Database and similar)
// hold one species per row with trait values as free text, reference codes in
// parentheses or behind hyperlinks to a References worksheet, and
// presentational markup (font colour, strikethrough) carrying editorial
// meaning that is preserved as audit notes, never interpreted.
//
// # Cell Value Conventions
//
// Fire dates and numeric ranges use an informal grammar:
//
//	1992          bare year         -> 1992-01-01 .. 1992-12-31
//	1990-95       two-digit suffix  -> 1990-01-01 .. 1995-12-31
//	<10, >1995    open-ended bound  -> one bound set, "max/min value given" note
//	anything else                   -> bounds unset, original text kept with a note
//
// Multi-value trait cells are split on "/" into separate records, then on
// "&", ";", ",", " or " and " and " into further records; every split leaves
// a breadcrumb in the record's raw value so the original cell can be
// reconstructed. A leading "a-" marks a value inferred from plant morphology
// and a "?" marks an uncertain value; both become notes.
//
// The sentinel "NA"/"na" means not-available and is skipped, never coerced
// to zero. Count columns must be strict integers; a value such as "ca. 3" is
// diverted into the record's notes instead of the typed field.
//
// # Geometry
//
// Site coordinates are either longitude/latitude (SRID 4326) or UTM
// easting/northing with a zone code mapped onto GDA94 / MGA SRIDs:
// zone 54 -> 28354, 55 -> 28355, 56 -> 28356. A point is emitted only when
// both coordinates and a resolved SRID are present; a coordinate equal to 0
// counts as present.
//
// # Weights
//
// Every observation carries a confidence weight used downstream to rank
// competing records for the same fact: 1 by default, 0 for sources flagged
// as redundant copies of another imported dataset, 10 for curated summary
// values.
package domain
