package grammar

import "testing"

func TestEvalExpr(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1+2", "3"},
		{"2*3+4", "10"},
		{"2+3*4", "14"},
		{"(2+3)*4", "20"},
		{"2**3", "8"},
		{"2**3**2", "512"}, // right-associative: 2**(3**2)
		{"-5+10", "5"},
		{"10%3", "1"},
		{"10/4", "2.5"},
	}
	for _, c := range cases {
		got, err := evalExpr(c.src)
		if err != nil {
			t.Fatalf("evalExpr(%q): unexpected error: %v", c.src, err)
		}
		if got != c.want {
			t.Errorf("evalExpr(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestEvalExpr_DivisionByZero(t *testing.T) {
	if _, err := evalExpr("1/0"); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestSubstituteExprs(t *testing.T) {
	out, err := substituteExprs("margin is {10+5} px")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "margin is 15 px" {
		t.Fatalf("got %q", out)
	}
}

func TestSubstituteExprs_MalformedRejects(t *testing.T) {
	if _, err := substituteExprs("{1+}"); err == nil {
		t.Fatal("expected an error for a malformed expression")
	}
}

func TestSubstituteExprs_CachesResult(t *testing.T) {
	exprCache.Delete("3+4")
	first, err := substituteExprs("{3+4}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != "7" {
		t.Fatalf("got %q", first)
	}
	if _, ok := exprCache.Load("3+4"); !ok {
		t.Fatal("expected the expression to be cached")
	}
}
