package condition

import "testing"

func TestEvalTruthyExpression(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	ok, err := eval.Eval(`vars["env"] == "prod"`, map[string]string{"env": "prod"})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !ok {
		t.Error("expected expression to evaluate true")
	}

	ok, err = eval.Eval(`vars["env"] == "prod"`, map[string]string{"env": "dev"})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if ok {
		t.Error("expected expression to evaluate false")
	}
}

func TestCompileRejectsBrokenExpression(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	if err := eval.Compile(`vars["env"] ==`); err == nil {
		t.Error("expected a compile error for a truncated expression")
	}
}

func TestEvalRejectsNonBooleanResult(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	_, err = eval.Eval(`vars["env"]`, map[string]string{"env": "dev"})
	if err == nil {
		t.Error("expected an error for a non-boolean result")
	}
}

func TestProgramCacheReused(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	expr := `vars["x"] == "1"`
	if _, err := eval.Eval(expr, map[string]string{"x": "1"}); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if _, ok := eval.cache.Load(expr); !ok {
		t.Error("expected compiled program to be cached")
	}
}
