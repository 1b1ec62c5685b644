package models

import "time"

// StepKind identifies a phase of the sequential search
type StepKind string

const (
	StepBase     StepKind = "base"
	StepTypeYear StepKind = "type_year"
	StepAdvanced StepKind = "advanced"
	StepMaxims   StepKind = "maxims"
)

// SearchStepResult is the reply obtained for one executed refinement step
type SearchStepResult struct {
	Step         int       `json:"step"`
	Kind         StepKind  `json:"kind"`
	Label        string    `json:"label"`
	Instruction  string    `json:"instruction"`
	ResponseText string    `json:"response_text"`
	CompletedAt  time.Time `json:"completed_at"`
}
