package geodata

import "strings"

// Token lists for header-name matching. Substring tokens are checked
// against lowercased names; nameExact requires a full match so a column
// like "hostname" is not mistaken for a display name.
var (
	latTokens    = []string{"lat", "latitude"}
	lonTokens    = []string{"lon", "long", "longitude", "lng"}
	postalTokens = []string{"postal", "postal code", "zip", "zip code", "zipcode", "post_code", "pincode", "zip_code"}
	nameExact    = []string{"name", "title", "label", "location_name"}
)

// Sniff resolves column roles for a parsed CSV. Coordinate columns are
// found by name first; when either stays unresolved the first two
// numeric-typed columns (in original order) are assigned as (lat, lon).
// If fewer than two numeric columns exist, both coordinate roles stay
// unresolved and the dataset is unusable. First match wins for every
// role, so ties break by original column order.
func Sniff(header []string, rows [][]string) Schema {
	var s Schema
	for _, col := range header {
		lc := strings.ToLower(col)
		if s.LatCol == "" && containsAny(lc, latTokens) {
			s.LatCol = col
		}
		if s.LonCol == "" && containsAny(lc, lonTokens) {
			s.LonCol = col
		}
	}
	if s.LatCol == "" || s.LonCol == "" {
		// Positional fallback replaces both roles, even when one of
		// them had a name match: a lone coordinate column is useless.
		nums := numericColumns(header, rows)
		if len(nums) >= 2 {
			s.LatCol, s.LonCol = nums[0], nums[1]
			s.FellBack = true
		} else {
			s.LatCol, s.LonCol = "", ""
		}
	}
	for _, col := range header {
		lc := strings.ToLower(col)
		if s.PostalCol == "" && containsAny(lc, postalTokens) {
			s.PostalCol = col
		}
		if s.NameCol == "" {
			for _, want := range nameExact {
				if lc == want {
					s.NameCol = col
					break
				}
			}
		}
	}
	return s
}

func containsAny(lc string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(lc, t) {
			return true
		}
	}
	return false
}

// numericColumns returns, in original order, the columns whose every
// non-empty cell parses as a finite number. A column needs at least one
// non-empty cell to qualify: an all-blank column carries no coordinate
// signal and selecting it would only produce zero valid rows.
func numericColumns(header []string, rows [][]string) []string {
	var nums []string
	for i, col := range header {
		nonEmpty := 0
		numeric := true
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, ok := CoerceFloat(cell); !ok {
				numeric = false
				break
			}
		}
		if numeric && nonEmpty > 0 {
			nums = append(nums, col)
		}
	}
	return nums
}
