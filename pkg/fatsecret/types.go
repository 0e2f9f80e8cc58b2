package fatsecret

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ServingList holds the ordered serving sequence of a food detail.
//
// The upstream API encodes a single serving as a bare object and multiple
// servings as an array. ServingList models that ambiguity as a sum type at
// the deserialization boundary and normalizes to a sequence immediately, so
// business logic never sees the single-object form.
//
// Entries are kept as raw JSON: servings returned by the upstream pass
// through byte-for-byte, and the normalizer only parses the handful of
// fields it needs from each entry.
type ServingList []json.RawMessage

// UnmarshalJSON accepts either a single serving object or an array of
// serving objects.
func (s *ServingList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return fmt.Errorf("empty serving value")
	}

	if trimmed[0] == '[' {
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		*s = entries
		return nil
	}

	// Single object form: coerce to a one-element sequence.
	var entry json.RawMessage
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	*s = ServingList{entry}
	return nil
}

// MarshalJSON always emits the array form.
func (s ServingList) MarshalJSON() ([]byte, error) {
	return json.Marshal([]json.RawMessage(s))
}

// Servings wraps the serving sequence the way the upstream nests it under
// a food detail.
type Servings struct {
	Serving ServingList `json:"serving"`
}

// FoodDetail is the food-detail payload exposed to gateway callers.
type FoodDetail struct {
	FoodID    string    `json:"food_id"`
	FoodName  string    `json:"food_name"`
	FoodType  string    `json:"food_type"`
	BrandName string    `json:"brand_name,omitempty"`
	FoodURL   string    `json:"food_url,omitempty"`
	Servings  *Servings `json:"servings,omitempty"`
}

// BarcodeResult is the composed envelope returned for a barcode lookup:
// the summary fields of the resolved food plus its full normalized detail.
//
// FoodDescription is always serialized as null regardless of upstream data;
// barcode lookups do not surface description text to callers.
type BarcodeResult struct {
	FoodID          string      `json:"food_id"`
	FoodName        string      `json:"food_name"`
	FoodType        string      `json:"food_type"`
	BrandName       string      `json:"brand_name,omitempty"`
	FoodDescription *string     `json:"food_description"`
	FoodURL         string      `json:"food_url,omitempty"`
	Detail          *FoodDetail `json:"detail"`
}

// tokenResponse is the body returned by the OAuth token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// foodEnvelope wraps the food.get response.
type foodEnvelope struct {
	Food *FoodDetail `json:"food"`
}

// barcodeEnvelope wraps the food.find_id_for_barcode response.
type barcodeEnvelope struct {
	FoodID struct {
		Value string `json:"value"`
	} `json:"food_id"`
}

// servingFields is the subset of a serving entry the normalizer reads.
// All numeric fields arrive as decimal strings on the wire.
type servingFields struct {
	Calories            string `json:"calories"`
	Carbohydrate        string `json:"carbohydrate"`
	Fat                 string `json:"fat"`
	Protein             string `json:"protein"`
	MetricServingAmount string `json:"metric_serving_amount"`
	MetricServingUnit   string `json:"metric_serving_unit"`
}

// derivedServing is a serving synthesized by the normalizer. Nutrient
// fields absent on the base serving stay null, not zero.
type derivedServing struct {
	ServingDescription     string  `json:"serving_description"`
	MeasurementDescription string  `json:"measurement_description"`
	MetricServingAmount    string  `json:"metric_serving_amount"`
	MetricServingUnit      string  `json:"metric_serving_unit"`
	Calories               *string `json:"calories"`
	Carbohydrate           *string `json:"carbohydrate"`
	Fat                    *string `json:"fat"`
	Protein                *string `json:"protein"`
}
