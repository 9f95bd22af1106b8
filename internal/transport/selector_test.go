package transport

import (
	"context"
	"testing"
)

type fakeStrategy struct{ name string }

func (f fakeStrategy) Fetch(context.Context, Request) (string, error) { return f.name, nil }

type fakeEnvironment struct {
	inTest        bool
	supportsRelay bool
}

func (f fakeEnvironment) InTest() bool        { return f.inTest }
func (f fakeEnvironment) SupportsRelay() bool { return f.supportsRelay }

func TestSelectorRules(t *testing.T) {
	direct := fakeStrategy{name: "direct"}
	relay := fakeStrategy{name: "relay"}

	cases := []struct {
		name       string
		env        fakeEnvironment
		forceRelay bool
		want       Strategy
	}{
		{"test context picks direct", fakeEnvironment{inTest: true, supportsRelay: true}, false, direct},
		{"relay-capable host picks relay", fakeEnvironment{supportsRelay: true}, false, relay},
		{"plain process picks direct", fakeEnvironment{}, false, direct},
		{"override forces relay everywhere", fakeEnvironment{inTest: true}, true, relay},
	}
	for _, tc := range cases {
		got := NewSelector(tc.env, direct, relay, tc.forceRelay).Select()
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestProcessEnvironmentDetectsTestRun(t *testing.T) {
	env := ProcessEnvironment{}
	if !env.InTest() {
		t.Fatalf("expected test harness detection")
	}
	if env.SupportsRelay() {
		t.Fatalf("plain process should not support relay")
	}
}
