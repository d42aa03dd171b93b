package schema_test

import (
	"testing"

	"mentorhub/platform/schema"
)

func TestPdiStatusTransitions(t *testing.T) {
	all := []string{
		schema.PdiActive, schema.PdiInactive, schema.PdiBlocked,
		schema.PdiCompleted, schema.PdiNotCompleted,
	}

	for _, from := range all {
		if !schema.CanTransitionPdiStatus(from, from) {
			t.Fatalf("same-state write from %v should be allowed", from)
		}
	}

	for _, from := range []string{schema.PdiActive, schema.PdiInactive, schema.PdiBlocked} {
		for _, to := range all {
			if !schema.CanTransitionPdiStatus(from, to) {
				t.Fatalf("transition %v -> %v should be allowed", from, to)
			}
		}
	}

	for _, from := range []string{schema.PdiCompleted, schema.PdiNotCompleted} {
		for _, to := range all {
			if from == to {
				continue
			}
			if schema.CanTransitionPdiStatus(from, to) {
				t.Fatalf("transition %v -> %v should be rejected", from, to)
			}
		}
	}
}

func TestValidPdiStatus(t *testing.T) {
	for _, status := range []string{
		schema.PdiActive, schema.PdiInactive, schema.PdiCompleted,
		schema.PdiNotCompleted, schema.PdiBlocked,
	} {
		if !schema.ValidPdiStatus(status) {
			t.Fatalf("status %v should be valid", status)
		}
	}

	for _, status := range []string{"", "active", "Done", "Cancelled"} {
		if schema.ValidPdiStatus(status) {
			t.Fatalf("status %v should be invalid", status)
		}
	}
}

func TestValidPdiEvaluation(t *testing.T) {
	for _, evaluation := range []string{
		schema.EvalNotStarted, schema.EvalUnsatisfactory,
		schema.EvalPartiallyUnsatisfactory, schema.EvalSatisfactory,
		schema.EvalExcellent,
	} {
		if !schema.ValidPdiEvaluation(evaluation) {
			t.Fatalf("evaluation %v should be valid", evaluation)
		}
	}

	if schema.ValidPdiEvaluation("Great") {
		t.Fatal("evaluation outside the enum should be invalid")
	}
}
