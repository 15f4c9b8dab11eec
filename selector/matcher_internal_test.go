package selector

import "testing"

func TestParseNthExpression(t *testing.T) {
	cases := []struct {
		expr string
		a, b int
		ok   bool
	}{
		{"odd", 2, 1, true},
		{"even", 2, 0, true},
		{"3", 0, 3, true},
		{"2n", 2, 0, true},
		{"2n+1", 2, 1, true},
		{"-n+3", -1, 3, true},
		{"n", 1, 0, true},
		{"2N+1", 2, 1, true},
		{"", 0, 0, false},
		{"garbage", 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			a, b, ok := parseNthExpression(tc.expr)
			if ok != tc.ok {
				t.Fatalf("parseNthExpression(%q) ok = %v, want %v", tc.expr, ok, tc.ok)
			}
			if ok && (a != tc.a || b != tc.b) {
				t.Fatalf("parseNthExpression(%q) = (%d, %d), want (%d, %d)", tc.expr, a, b, tc.a, tc.b)
			}
		})
	}
}

func TestAttrValueMatchers(t *testing.T) {
	cases := []struct {
		op       AttrOperator
		val, arg string
		want     bool
	}{
		{AttrEquals, "x", "x", true},
		{AttrEquals, "x", "y", false},
		{AttrIncludes, "a b c", "b", true},
		{AttrIncludes, "abc", "b", false},
		{AttrDashPrefix, "en-US", "en", true},
		{AttrDashPrefix, "en", "en", true},
		{AttrDashPrefix, "ens", "en", false},
		{AttrPrefixMatch, "hello", "he", true},
		{AttrSuffixMatch, "hello", "lo", true},
		{AttrSubstring, "hello", "ell", true},
		{AttrSubstring, "hello", "xyz", false},
	}
	for _, tc := range cases {
		match, ok := attrValueMatchers[tc.op]
		if !ok {
			t.Fatalf("no matcher registered for operator %v", tc.op)
		}
		if got := match(tc.val, tc.arg); got != tc.want {
			t.Errorf("op %v: match(%q, %q) = %v, want %v", tc.op, tc.val, tc.arg, got, tc.want)
		}
	}
}

func TestMatchesNth(t *testing.T) {
	// index sequence produced by 2n+1 (odd positions).
	for idx, want := range map[int]bool{1: true, 2: false, 3: true, 4: false} {
		if got := matchesNth(idx, 2, 1); got != want {
			t.Errorf("matchesNth(%d, 2, 1) = %v, want %v", idx, got, want)
		}
	}
	// a=0 matches exactly index b.
	if !matchesNth(3, 0, 3) || matchesNth(2, 0, 3) {
		t.Error("matchesNth with a=0 should match only index b")
	}
	// negative a bounds the range: -n+3 matches 1..3.
	for idx, want := range map[int]bool{1: true, 3: true, 4: false} {
		if got := matchesNth(idx, -1, 3); got != want {
			t.Errorf("matchesNth(%d, -1, 3) = %v, want %v", idx, got, want)
		}
	}
}
