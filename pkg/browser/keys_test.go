package browser_test

import (
	"testing"

	"github.com/go-rod/rod/lib/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavsurve/popform/pkg/browser"
)

func TestLookupKey(t *testing.T) {
	tests := []struct {
		name string
		want input.Key
	}{
		{"Enter", input.Enter},
		{"enter", input.Enter},
		{"Tab", input.Tab},
		{"Escape", input.Escape},
		{"ArrowDown", input.ArrowDown},
		{"PageUp", input.PageUp},
		{"Space", input.Space},
		{"a", input.Key('a')},
		{"7", input.Key('7')},
		{"A", input.Key('A')},
		{"!", input.Key('!')},
		{"F1", input.F1},
		{"F5", input.F5},
		{"f12", input.F12},
		{"Insert", input.Insert},
		{"CapsLock", input.CapsLock},
		{"NumLock", input.NumLock},
		{"NumpadEnter", input.NumpadEnter},
		{"NumpadAdd", input.NumpadAdd},
		{"KeyA", input.KeyA},
		{"Digit1", input.Digit1},
		{"Shift", input.ShiftLeft},
		{"ShiftRight", input.ShiftRight},
		{"ControlRight", input.ControlRight},
		{"Return", input.Enter},
		{"Esc", input.Escape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := browser.LookupKey(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupKey_Unknown(t *testing.T) {
	for _, name := range []string{"", "Enterr", "F13", "é", "ab", "\n"} {
		t.Run(name, func(t *testing.T) {
			_, err := browser.LookupKey(name)
			assert.ErrorIs(t, err, browser.ErrUnknownKey)
		})
	}
}
