package api

import "encoding/json"

// PlanResponse is the body returned by the plan service for
// GET <endpoint>?planId=<id>.
type PlanResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Result  PlanResult `json:"result"`
}

type PlanResult struct {
	Cases []PlanCase `json:"cases"`
}

// PlanCase is one planned case. Condition values are kept raw because the
// service sends strings, numbers and single-element lists interchangeably.
type PlanCase struct {
	ID         json.RawMessage            `json:"id"`
	Conditions map[string]json.RawMessage `json:"filtersConditionDOMap"`
}

// Condition keys understood in filtersConditionDOMap.
const (
	CondOperator = "operator"
	CondVariant  = "variant"
	CondVLen     = "vlen"
	CondDType    = "dtype"
)
