package cmp_test

import (
	"testing"

	"github.com/modelmill/modelmill/pkg/utils/cmp"
)

func TestMapEq(t *testing.T) {
	for name, testcase := range map[string]struct {
		a, b map[string]string
		then bool
	}{
		"maps with the same pairs are equal": {
			a:    map[string]string{"churn": "registered", "fraud": "draft"},
			b:    map[string]string{"churn": "registered", "fraud": "draft"},
			then: true,
		},
		"maps differing in a value are not equal": {
			a:    map[string]string{"churn": "registered", "fraud": "draft"},
			b:    map[string]string{"churn": "registered", "fraud": "published"},
			then: false,
		},
		"maps differing in a key are not equal": {
			a:    map[string]string{"churn": "registered", "fraud": "draft"},
			b:    map[string]string{"churn": "registered", "uplift": "draft"},
			then: false,
		},
		"maps of different sizes are not equal": {
			a:    map[string]string{"churn": "registered", "fraud": "draft"},
			b:    map[string]string{"churn": "registered"},
			then: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if got := cmp.MapEq(testcase.a, testcase.b); got != testcase.then {
				t.Errorf("MapEq(a, b) = %v, expected %v", got, testcase.then)
			}
			if got := cmp.MapEq(testcase.b, testcase.a); got != testcase.then {
				t.Errorf("MapEq(b, a) = %v, expected %v", got, testcase.then)
			}
		})
	}
}

func TestMapEqWith(t *testing.T) {
	// values are equivalent when they agree up to the first dot
	sameStem := func(a, b string) bool {
		for i := 0; i < len(a) && i < len(b); i++ {
			if a[i] == '.' && b[i] == '.' {
				return a[:i] == b[:i]
			}
		}
		return a == b
	}

	for name, testcase := range map[string]struct {
		a, b map[string]string
		then bool
	}{
		"maps with equivalent values are equal": {
			a:    map[string]string{"sklearn": "1.4.0", "pandas": "2.1.1"},
			b:    map[string]string{"sklearn": "1.9.9", "pandas": "2.5.0"},
			then: true,
		},
		"maps with values differing before the dot are not equal": {
			a:    map[string]string{"sklearn": "1.4.0", "pandas": "2.1.1"},
			b:    map[string]string{"sklearn": "1.4.0", "pandas": "3.0.0"},
			then: false,
		},
		"maps differing in a key are not equal": {
			a:    map[string]string{"sklearn": "1.4.0", "pandas": "2.1.1"},
			b:    map[string]string{"sklearn": "1.4.0", "numpy": "2.1.1"},
			then: false,
		},
		"maps of different sizes are not equal": {
			a:    map[string]string{"sklearn": "1.4.0", "pandas": "2.1.1"},
			b:    map[string]string{"sklearn": "1.4.0"},
			then: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if got := cmp.MapEqWith(testcase.a, testcase.b, sameStem); got != testcase.then {
				t.Errorf("MapEqWith(a, b) = %v, expected %v", got, testcase.then)
			}
			if got := cmp.MapEqWith(testcase.b, testcase.a, sameStem); got != testcase.then {
				t.Errorf("MapEqWith(b, a) = %v, expected %v", got, testcase.then)
			}
		})
	}
}
