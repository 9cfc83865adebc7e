package services

import (
	"fmt"
	"sort"

	"provenance-workflow-service/internal/core/domain"
)

// RegisterBuiltins installs the functions that ship with the service, so a
// fresh deployment can run inline calculations without client-side
// registration.
func (s *InlineService) RegisterBuiltins() {
	s.Register("merge_parameters", mergeParameters)
	s.Register("sum_values", sumValues)
}

// mergeParameters folds the attribute documents of all inputs into a single
// "merged" output. Inputs are visited in label order, so on key collisions
// the lexicographically last label wins.
func mergeParameters(inputs map[string]*domain.Node) (map[string]map[string]interface{}, error) {
	labels := make([]string, 0, len(inputs))
	for label := range inputs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	merged := make(map[string]interface{})
	for _, label := range labels {
		for k, v := range inputs[label].Attributes {
			merged[k] = v
		}
	}
	return map[string]map[string]interface{}{"merged": merged}, nil
}

// sumValues adds up the "value" attribute of every input and emits the total
// as a "sum" output.
func sumValues(inputs map[string]*domain.Node) (map[string]map[string]interface{}, error) {
	var total float64
	for label, node := range inputs {
		raw, ok := node.Attributes["value"]
		if !ok {
			return nil, fmt.Errorf("input %q has no value attribute", label)
		}
		v, err := toFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", label, err)
		}
		total += v
	}
	return map[string]map[string]interface{}{"sum": {"value": total}}, nil
}

func toFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("value %v is not numeric", raw)
	}
}
