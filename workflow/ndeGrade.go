package workflow

import (
	"regexp"
	"strconv"
	"strings"

	"bitbucket.org/tkmfield/precom_backend/models"
)

// NDE grade strings are free text from the line list. Three clause shapes
// occur, comma separated:
//
//	"10%RT"  percent then type
//	"RT 10%" type then percent
//	"10%"    bare percent
//
// VT is always required at 100%. A bare percentage is shorthand for an RT
// requirement, but only when the string names no explicit test type at all;
// once any clause carries a type, bare percentages are ignored.
var (
	pctThenType = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*%\s*([A-Za-z]+)`)
	typeThenPct = regexp.MustCompile(`^([A-Za-z]+)\s*(\d+(?:\.\d+)?)\s*%`)
	barePct     = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*%`)
)

// ParseNDEGrade extracts the required examination percentages from a grade
// string. Unparseable input never fails; it degrades to the VT-only default.
func ParseNDEGrade(grade string) map[models.TestType]float64 {
	result := map[models.TestType]float64{models.TestTypeVT: 100}

	grade = strings.TrimSpace(grade)
	if grade == "" || strings.EqualFold(grade, "nan") || strings.EqualFold(grade, "none") {
		return result
	}

	hasExplicitType := false
	var onlyPercentage *float64

	for _, part := range strings.Split(grade, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if m := pctThenType.FindStringSubmatch(part); m != nil {
			pct, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				result[models.TestType(strings.ToUpper(m[2]))] = pct
				hasExplicitType = true
			}
			continue
		}

		if m := typeThenPct.FindStringSubmatch(part); m != nil {
			pct, err := strconv.ParseFloat(m[2], 64)
			if err == nil {
				result[models.TestType(strings.ToUpper(m[1]))] = pct
				hasExplicitType = true
			}
			continue
		}

		if m := barePct.FindStringSubmatch(part); m != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
				onlyPercentage = &pct
			}
		}
	}

	if !hasExplicitType && onlyPercentage != nil {
		result[models.TestTypeRT] = *onlyPercentage
	}

	return result
}
