// Package domain models the NABR climate, soil-moisture, and vegetation
// observations and the reporting logic derived from them.
//
// # Data Source
//
// Observations come from two CSV tables sharing one schema: a historical
// table (NABR_historic.csv) and a near-term projection table
// (nearterm_data_2020-2024.csv). Both are concatenated row-wise with no
// deduplication and no provenance flag; analysis never distinguishes them.
//
// # Conventions
//
// Location:
//
//	A monitoring point is the exact (longitude, latitude) pair. The same pair
//	denotes the same physical site in every year of both tables. Sites are
//	never interpolated or snapped.
//
// Missing values:
//
//	"NA", "NaN", and empty cells load as NaN. Every sum and mean skips NaN;
//	nothing is imputed. Classification and trend fitting drop rows whose
//	inputs are missing.
//
// Seasonal averages:
//
//	Row temperature is (T_Summer + T_Winter) / 2 and row precipitation is
//	(PPT_Summer + PPT_Winter) / 2. Either input missing makes the average NaN.
//
// # Drought Classification
//
// Terciles of the row averages are computed once over all classifiable rows
// (probabilities 0.33 and 0.66, linear interpolation between order
// statistics). Each row is then labeled independently:
//
//	t <= t33 and p >= p66                   Low_Arid
//	(t33 < t <= t66) or (p33 < p <= p66)    Medium_Arid
//	t > t66 and p <= p33                    High_Arid
//	otherwise                               Medium_Arid (fallback)
//
// The fallback catches cold-and-dry and hot-and-wet rows. It is kept exactly
// as the rule table states and counted separately so reports can show how
// often it fires. See [ClassifyDroughtBranch].
//
// # Region Classification
//
// Quadrants are taken against a fixed center (-110.0098, 37.59964). Ties go
// north and east, so the center itself is Northeast. See [ClassifyRegion].
package domain
