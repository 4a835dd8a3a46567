package cmp_test

import (
	"testing"

	"github.com/modelmill/modelmill/pkg/utils/cmp"
)

func TestSliceEq(t *testing.T) {
	for name, testcase := range map[string]struct {
		a, b []string
		then bool
	}{
		"slices with the same elements in the same order are equal": {
			a:    []string{"stage", "register", "publish"},
			b:    []string{"stage", "register", "publish"},
			then: true,
		},
		"slices differing in an element are not equal": {
			a:    []string{"stage", "register", "publish"},
			b:    []string{"stage", "register", "score"},
			then: false,
		},
		"slices with the same elements in another order are not equal": {
			a:    []string{"stage", "register", "publish"},
			b:    []string{"register", "stage", "publish"},
			then: false,
		},
		"slices of different lengths are not equal": {
			a:    []string{"stage", "register", "publish"},
			b:    []string{"stage", "register"},
			then: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if got := cmp.SliceEq(testcase.a, testcase.b); got != testcase.then {
				t.Errorf("SliceEq(a, b) = %v, expected %v", got, testcase.then)
			}
			if got := cmp.SliceEq(testcase.b, testcase.a); got != testcase.then {
				t.Errorf("SliceEq(b, a) = %v, expected %v", got, testcase.then)
			}
		})
	}
}

func TestSliceEqWith(t *testing.T) {
	sameLen := func(a string, b int) bool { return len(a) == b }

	for name, testcase := range map[string]struct {
		a    []string
		b    []int
		then bool
	}{
		"slices equivalent elementwise are equal": {
			a:    []string{"models", "", "mas"},
			b:    []int{6, 0, 3},
			then: true,
		},
		"slices with a non-equivalent element are not equal": {
			a:    []string{"models", "", "mas"},
			b:    []int{6, 1, 3},
			then: false,
		},
		"slices of different lengths are not equal": {
			a:    []string{"models", "", "mas"},
			b:    []int{6, 0},
			then: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if got := cmp.SliceEqWith(testcase.a, testcase.b, sameLen); got != testcase.then {
				t.Errorf("SliceEqWith(a, b) = %v, expected %v", got, testcase.then)
			}
		})
	}
}

func TestSliceContentEq(t *testing.T) {
	for name, testcase := range map[string]struct {
		a, b []string
		then bool
	}{
		"same elements in the same order are equal as bags": {
			a:    []string{"churn", "fraud", "uplift"},
			b:    []string{"churn", "fraud", "uplift"},
			then: true,
		},
		"same elements in another order are equal as bags": {
			a:    []string{"churn", "fraud", "uplift"},
			b:    []string{"uplift", "churn", "fraud"},
			then: true,
		},
		"a differing element makes bags unequal": {
			a:    []string{"churn", "fraud", "uplift"},
			b:    []string{"churn", "fraud", "scoring"},
			then: false,
		},
		"an extra duplicate makes bags unequal": {
			a:    []string{"churn", "fraud", "uplift"},
			b:    []string{"churn", "fraud", "uplift", "uplift"},
			then: false,
		},
		"matching duplicates keep bags equal": {
			a:    []string{"uplift", "churn", "fraud", "uplift"},
			b:    []string{"churn", "fraud", "uplift", "uplift"},
			then: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if got := cmp.SliceContentEq(testcase.a, testcase.b); got != testcase.then {
				t.Errorf("SliceContentEq(a, b) = %v, expected %v", got, testcase.then)
			}
			if got := cmp.SliceContentEq(testcase.b, testcase.a); got != testcase.then {
				t.Errorf("SliceContentEq(b, a) = %v, expected %v", got, testcase.then)
			}
		})
	}
}

func TestSliceContentEqWith(t *testing.T) {
	type ref struct {
		library string
		table   string
	}
	equiv := func(a, b ref) bool {
		return a.library+"."+a.table == b.library+"."+b.table
	}

	for name, testcase := range map[string]struct {
		a, b []ref
		then bool
	}{
		"when two slices are equal, it returns true": {
			a:    []ref{{"public", "churn_1"}, {"public", "churn_2"}, {"casuser", "scratch"}},
			b:    []ref{{"public", "churn_1"}, {"public", "churn_2"}, {"casuser", "scratch"}},
			then: true,
		},
		"when two slices are equal except ordering, it returns true": {
			a:    []ref{{"public", "churn_1"}, {"public", "churn_2"}, {"casuser", "scratch"}},
			b:    []ref{{"casuser", "scratch"}, {"public", "churn_1"}, {"public", "churn_2"}},
			then: true,
		},
		"when two slices are different in length, it returns false": {
			a:    []ref{{"public", "churn_1"}, {"public", "churn_2"}, {"casuser", "scratch"}},
			b:    []ref{{"public", "churn_1"}, {"public", "churn_2"}},
			then: false,
		},
		"when two slices are different in an element, it returns false": {
			a:    []ref{{"public", "churn_1"}, {"public", "churn_2"}, {"casuser", "scratch"}},
			b:    []ref{{"public", "churn_1"}, {"public", "churn_2"}, {"casuser", "keep"}},
			then: false,
		},
		"when duplicated values are paired up, it returns true": {
			a:    []ref{{"public", "churn_1"}, {"public", "churn_1"}, {"casuser", "scratch"}},
			b:    []ref{{"casuser", "scratch"}, {"public", "churn_1"}, {"public", "churn_1"}},
			then: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if actual := cmp.SliceContentEqWith(
				testcase.a, testcase.b, equiv,
			); actual != testcase.then {
				t.Errorf(
					"wrong result: SliceContentEqWith(a = %#v, b = %#v, equiv) -> %v",
					testcase.a, testcase.b, actual,
				)
			}
			if actual := cmp.SliceContentEqWith(
				testcase.b, testcase.a, equiv,
			); actual != testcase.then {
				t.Errorf(
					"wrong result: SliceContentEqWith(b = %#v, a = %#v, equiv) -> %v",
					testcase.b, testcase.a, actual,
				)
			}
		})
	}
}
