// Package stats normalizes heterogeneous per-entity statistics payloads
// into flat metric triples and fans sampling out across entities.
package stats

import (
	"encoding/json"

	"github.com/nutanix-exporter/nutanix-exporter/internal/catalog"
	"github.com/nutanix-exporter/nutanix-exporter/pkg/errors"
)

// Shape selects the normalizer for one of the closed set of payload
// layouts the upstream stats endpoints produce.
type Shape int

const (
	// ShapeSeriesMap is a mapping of field name to a list of sampled
	// records; the first record holds the most recent value under
	// statType=LAST. Fields whose list holds bare numbers instead of
	// records are accepted too.
	ShapeSeriesMap Shape = iota

	// ShapeScalarMap is a flat mapping of field name to value.
	ShapeScalarMap

	// ShapeTupleList is a list of per-sub-resource tuples, each
	// flattened independently as a scalar map.
	ShapeTupleList
)

// excludedFields removes bookkeeping payload keys that are not metrics.
// Keys are matched after snake_case normalization.
var excludedFields = map[string]bool{
	"timestamp":           true,
	"_reserved":           true,
	"_object_type":        true,
	"_unknown_fields":     true,
	"ext_id":              true,
	"links":               true,
	"container_ext_id":    true,
	"tenant_id":           true,
	"stat_type":           true,
	"cluster":             true,
	"hypervisor_type":     true,
	"volume_group_ext_id": true,
	"volume_disk_ext_id":  true,
}

// skippedComposites are known nested sub-statistics that need richer
// modeling than a flat gauge; they are recognized and skipped rather
// than mis-mapped. Currently the load balancer sub-stat lists.
var skippedComposites = map[string]bool{
	"listener_stats": true,
	"target_stats":   true,
}

// sampleRecord is one element of a series list.
type sampleRecord struct {
	Value *float64 `json:"value"`
}

// Flatten normalizes a raw stats payload into field-to-value pairs
// according to the declared shape. Absent and null values are dropped.
// For ShapeTupleList the second return groups values per tuple index.
func Flatten(shape Shape, data json.RawMessage) ([]map[string]float64, error) {
	switch shape {
	case ShapeSeriesMap:
		fields, err := flattenSeriesMap(data)
		if err != nil {
			return nil, err
		}
		return []map[string]float64{fields}, nil
	case ShapeScalarMap:
		fields, err := flattenScalarMap(data)
		if err != nil {
			return nil, err
		}
		return []map[string]float64{fields}, nil
	case ShapeTupleList:
		return flattenTupleList(data)
	default:
		return nil, errors.NewError(errors.ErrCodeInternalError, "unknown payload shape").
			WithComponent("stats")
	}
}

func flattenSeriesMap(data json.RawMessage) (map[string]float64, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, decodeErr(err)
	}

	fields := make(map[string]float64)
	for key, value := range raw {
		name := catalog.SnakeCase(key)
		if excludedFields[name] || skippedComposites[name] {
			continue
		}

		// Most fields are lists of {timestamp, value} records; a few
		// endpoints ship bare number lists for the same concept.
		var records []sampleRecord
		if err := json.Unmarshal(value, &records); err == nil {
			if len(records) > 0 && records[0].Value != nil {
				fields[name] = *records[0].Value
			}
			continue
		}

		var numbers []float64
		if err := json.Unmarshal(value, &numbers); err == nil {
			if len(numbers) > 0 {
				fields[name] = numbers[0]
			}
			continue
		}

		// Not a series; ignore nested objects silently.
	}
	return fields, nil
}

func flattenScalarMap(data json.RawMessage) (map[string]float64, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, decodeErr(err)
	}

	fields := make(map[string]float64)
	for key, value := range raw {
		name := catalog.SnakeCase(key)
		if excludedFields[name] || skippedComposites[name] {
			continue
		}

		var number *float64
		if err := json.Unmarshal(value, &number); err != nil || number == nil {
			continue
		}
		fields[name] = *number
	}
	return fields, nil
}

func flattenTupleList(data json.RawMessage) ([]map[string]float64, error) {
	var tuples []json.RawMessage
	if err := json.Unmarshal(data, &tuples); err != nil {
		return nil, decodeErr(err)
	}

	result := make([]map[string]float64, 0, len(tuples))
	for _, tuple := range tuples {
		fields, err := flattenSeriesMapOrScalar(tuple)
		if err != nil {
			return nil, err
		}
		result = append(result, fields)
	}
	return result, nil
}

// flattenSeriesMapOrScalar handles tuples whose members mix direct
// values and short series lists.
func flattenSeriesMapOrScalar(data json.RawMessage) (map[string]float64, error) {
	fields, err := flattenSeriesMap(data)
	if err != nil {
		return nil, err
	}

	scalars, err := flattenScalarMap(data)
	if err != nil {
		return nil, err
	}
	for name, value := range scalars {
		if _, ok := fields[name]; !ok {
			fields[name] = value
		}
	}
	return fields, nil
}

func decodeErr(err error) error {
	return errors.NewError(errors.ErrCodeDecodeFailed, "failed to decode stats payload").
		WithComponent("stats").WithCause(err)
}
