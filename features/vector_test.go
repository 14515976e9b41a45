package features

import "testing"

func TestAssemble(t *testing.T) {
	scores := make([]int, VectorLen)
	for i := range scores {
		scores[i] = i%3 - 1
	}
	v := Assemble(scores)
	for i := range scores {
		if v[i] != scores[i] {
			t.Fatalf("position %d = %d, want %d", i, v[i], scores[i])
		}
	}

	scores[0] = 42
	if v[0] == 42 {
		t.Fatalf("vector aliases the input slice")
	}
}

func TestAssemblePanicsOnWrongLength(t *testing.T) {
	for _, n := range []int{0, VectorLen - 1, VectorLen + 1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Assemble with %d scores did not panic", n)
				}
			}()
			Assemble(make([]int, n))
		}()
	}
}

func TestVectorViews(t *testing.T) {
	var v Vector
	v[0] = Suspicious
	v[VectorLen-1] = Legitimate

	s := v.Slice()
	if len(s) != VectorLen || s[0] != -1 || s[VectorLen-1] != 1 {
		t.Fatalf("Slice() = %v", s)
	}
	s[0] = 1
	if v[0] != Suspicious {
		t.Fatalf("Slice() aliases the vector")
	}

	named := v.Named()
	if len(named) != VectorLen {
		t.Fatalf("Named() has %d entries, want %d", len(named), VectorLen)
	}
	if named["having_ip_address"] != -1 || named["statistical_report"] != 1 {
		t.Errorf("Named() = %v", named)
	}

	if !v.Valid() {
		t.Errorf("zero-ish vector reported invalid")
	}
	v[5] = 2
	if v.Valid() {
		t.Errorf("vector with 2 reported valid")
	}
}

func TestNamesAndRulesAligned(t *testing.T) {
	seen := make(map[string]bool, VectorLen)
	for i, name := range Names {
		if name == "" {
			t.Errorf("position %d has no name", i+1)
		}
		if seen[name] {
			t.Errorf("duplicate name %q", name)
		}
		seen[name] = true
	}
	for i, rule := range Rules {
		if rule == nil {
			t.Errorf("rule %d is nil", i+1)
		}
	}
}
