package fatsecret

import (
	"encoding/json"
	"strconv"
)

// gramsPerOunce converts oz base servings to their gram equivalent.
const gramsPerOunce = 28.3495

// NormalizeServings appends a synthesized per-gram or per-milliliter serving
// to a food detail, derived from the best available base serving.
//
// The upstream reports nutrition only per arbitrary serving ("1 slice",
// "1 cup"); clients need an exact per-unit multiplier to support custom
// serving-size entry. The base serving is the first entry with a positive
// metric_serving_amount and a unit of g, oz, or ml; g and oz bases produce a
// derived "g" serving (oz converted at 28.3495 g/oz), ml bases a derived
// "ml" serving. If no entry qualifies, nothing is appended.
//
// Existing entries are never mutated, removed, or reordered; the derived
// serving is appended at the end. Normalization is guarded against
// re-invocation: if a serving with metric_serving_amount "1.000" and the
// target unit already exists, no duplicate is appended.
func NormalizeServings(detail *FoodDetail) *FoodDetail {
	if detail == nil || detail.Servings == nil || len(detail.Servings.Serving) == 0 {
		return detail
	}

	entries := detail.Servings.Serving

	base, ok := selectBaseServing(entries)
	if !ok {
		return detail
	}

	amount, err := strconv.ParseFloat(base.MetricServingAmount, 64)
	if err != nil || amount <= 0 {
		return detail
	}

	var unit string
	switch base.MetricServingUnit {
	case "g":
		unit = "g"
	case "oz":
		unit = "g"
		amount *= gramsPerOunce
	case "ml":
		unit = "ml"
	default:
		// Fallback base with an unrecognized unit: no derived serving.
		return detail
	}

	if hasDerivedServing(entries, unit) {
		return detail
	}

	derived := derivedServing{
		ServingDescription:     "1 " + unit,
		MeasurementDescription: unit,
		MetricServingAmount:    "1.000",
		MetricServingUnit:      unit,
		Calories:               perUnit(base.Calories, amount),
		Carbohydrate:           perUnit(base.Carbohydrate, amount),
		Fat:                    perUnit(base.Fat, amount),
		Protein:                perUnit(base.Protein, amount),
	}

	raw, err := json.Marshal(derived)
	if err != nil {
		return detail
	}
	detail.Servings.Serving = append(entries, raw)

	return detail
}

// selectBaseServing returns the first serving with a positive metric amount
// and a recognized unit, falling back to the first entry regardless of unit.
func selectBaseServing(entries ServingList) (servingFields, bool) {
	var first servingFields
	haveFirst := false

	for _, raw := range entries {
		var fields servingFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		if !haveFirst {
			first = fields
			haveFirst = true
		}

		amount, err := strconv.ParseFloat(fields.MetricServingAmount, 64)
		if err != nil || amount <= 0 {
			continue
		}
		switch fields.MetricServingUnit {
		case "g", "oz", "ml":
			return fields, true
		}
	}

	return first, haveFirst
}

// hasDerivedServing reports whether a per-unit serving for the given unit
// already exists, so re-normalizing an already-processed detail does not
// accumulate duplicates.
func hasDerivedServing(entries ServingList, unit string) bool {
	for _, raw := range entries {
		var fields servingFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		if fields.MetricServingAmount == "1.000" && fields.MetricServingUnit == unit {
			return true
		}
	}
	return false
}

// perUnit divides a decimal-string nutrient value by the base amount and
// formats it to three decimals. Absent values stay nil.
func perUnit(value string, amount float64) *string {
	if value == "" {
		return nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	formatted := strconv.FormatFloat(n/amount, 'f', 3, 64)
	return &formatted
}
