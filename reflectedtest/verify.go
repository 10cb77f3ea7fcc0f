// Package reflectedtest verifies the bindings of a Manager from tests.
package reflectedtest

import (
	"reflect"
	"testing"

	"github.com/miruken-go/reflected"
	"github.com/stretchr/testify/require"
)

// Verify processes every binding discovered by m in a subtest
// grouped by category. Each binding must succeed and static
// bindings must have a callable installed. Static event factories
// are invoked to check they produce a replacer.
// Optional bindings are skipped.
func Verify(t *testing.T, m *reflected.Manager) {
	t.Helper()
	categories := []struct {
		name    string
		entries []reflected.Entry
	}{
		{"Getters", m.Getters()},
		{"Setters", m.Setters()},
		{"Invokers", m.Invokers()},
		{"MemberInfo", m.MemberInfo()},
		{"Events", m.Events()},
	}
	for _, category := range categories {
		entries := category.entries
		t.Run(category.name, func(t *testing.T) {
			for _, entry := range entries {
				d := entry.Descriptor
				t.Run(d.Identity(), func(t *testing.T) {
					if d.Optional {
						t.Skipf("%v is optional", d.Identity())
					}
					verify(t, m, d)
				})
			}
		})
	}
}

func verify(t *testing.T, m *reflected.Manager, d *reflected.Descriptor) {
	bound := m.Process(d)
	outcome, _ := m.Outcome(d)
	require.True(t, bound, "%v: %v", d, outcome)
	if !d.Static {
		return
	}
	slot, ok := m.Slot(d)
	require.True(t, ok, "%v has no callable", d)
	require.NotNil(t, slot)
	if d.Shape == reflected.EventShape {
		replacer := reflect.ValueOf(slot).Call(nil)
		require.Len(t, replacer, 1)
		require.False(t, replacer[0].IsNil(), "%v produced no replacer", d)
	}
}
