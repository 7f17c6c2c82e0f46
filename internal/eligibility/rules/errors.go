package rules

import (
	"errors"
	"fmt"
)

// ErrRuleEvaluation matches every *RuleEvaluationError with errors.Is.
var ErrRuleEvaluation = errors.New("RULE_EVALUATION_FAILED")

// RuleEvaluationError reports a stored expression that cannot be parsed or
// evaluated. It means the rule data is corrupt and must reach the caller.
type RuleEvaluationError struct {
	RuleID string `json:"ruleId"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("rule %s: %s at %s", e.RuleID, e.Reason, e.Path)
}

func (e *RuleEvaluationError) Is(target error) bool {
	return target == ErrRuleEvaluation
}

func newRuleError(ruleID, path, format string, args ...interface{}) *RuleEvaluationError {
	return &RuleEvaluationError{RuleID: ruleID, Path: path, Reason: fmt.Sprintf(format, args...)}
}
