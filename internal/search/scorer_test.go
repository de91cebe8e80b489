package search

import "testing"

func TestJaccard_Bounds(t *testing.T) {
	s := NewJaccardScorer()

	if got := s.Score("some document text", ""); got != 0 {
		t.Fatalf("empty query score = %v; want 0", got)
	}
	if got := s.Score("", "query"); got != 0 {
		t.Fatalf("empty document score = %v; want 0", got)
	}
	if got := s.Score("alpha beta", "alpha beta"); got != 1 {
		t.Fatalf("identical token sets score = %v; want 1", got)
	}
	if got := s.Score("alpha beta", "gamma delta"); got != 0 {
		t.Fatalf("disjoint token sets score = %v; want 0", got)
	}
}

func TestJaccard_PartialOverlap(t *testing.T) {
	s := NewJaccardScorer()

	// Q={alpha,beta}, D={beta,gamma,delta}: overlap 1, union 4.
	got := s.Score("beta gamma delta", "alpha beta")
	if got != 0.25 {
		t.Fatalf("score = %v; want 0.25", got)
	}
	if got < 0 || got > 1 {
		t.Fatalf("score %v outside [0,1]", got)
	}
}

func TestJaccard_CaseAndPunctuationInsensitive(t *testing.T) {
	s := NewJaccardScorer()
	if got := s.Score("Hello, World!", "hello world"); got != 1 {
		t.Fatalf("score = %v; want 1", got)
	}
}

func TestJaccard_Stopwords(t *testing.T) {
	s := NewJaccardScorer(WithStopwords([]string{"the", "a"}))
	if got := s.Score("the printer manual", "the printer"); got != 0.5 {
		// Q={printer}, D={printer,manual}: 1/2.
		t.Fatalf("score = %v; want 0.5", got)
	}
}

func TestJaccard_Deterministic(t *testing.T) {
	s := NewJaccardScorer()
	a := s.Score("reset the device by holding power", "reset device")
	b := s.Score("reset the device by holding power", "reset device")
	if a != b {
		t.Fatalf("scores differ across calls: %v vs %v", a, b)
	}
}
