package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-rod/rod/lib/input"
)

// allKeys is go-rod's US keyboard layout in declaration order, so that a key
// name shared by two physical keys ("Shift", "7") resolves to the first one.
var allKeys = []input.Key{
	input.Escape, input.F1, input.F2, input.F3, input.F4, input.F5, input.F6,
	input.F7, input.F8, input.F9, input.F10, input.F11, input.F12,

	input.Backquote, input.Digit1, input.Digit2, input.Digit3, input.Digit4, input.Digit5,
	input.Digit6, input.Digit7, input.Digit8, input.Digit9, input.Digit0, input.Minus,
	input.Equal, input.Backslash, input.Backspace,

	input.Tab, input.KeyQ, input.KeyW, input.KeyE, input.KeyR, input.KeyT, input.KeyY,
	input.KeyU, input.KeyI, input.KeyO, input.KeyP, input.BracketLeft, input.BracketRight,

	input.CapsLock, input.KeyA, input.KeyS, input.KeyD, input.KeyF, input.KeyG, input.KeyH,
	input.KeyJ, input.KeyK, input.KeyL, input.Semicolon, input.Quote, input.Enter,

	input.ShiftLeft, input.KeyZ, input.KeyX, input.KeyC, input.KeyV, input.KeyB, input.KeyN,
	input.KeyM, input.Comma, input.Period, input.Slash, input.ShiftRight,

	input.ControlLeft, input.MetaLeft, input.AltLeft, input.Space, input.AltRight,
	input.AltGraph, input.MetaRight, input.ContextMenu, input.ControlRight,

	input.PrintScreen, input.ScrollLock, input.Pause, input.PageUp, input.PageDown,
	input.Insert, input.Delete, input.Home, input.End, input.ArrowLeft, input.ArrowUp,
	input.ArrowRight, input.ArrowDown,

	input.NumLock, input.NumpadDivide, input.NumpadMultiply, input.NumpadSubtract,
	input.Numpad7, input.Numpad8, input.Numpad9, input.Numpad4, input.Numpad5,
	input.Numpad6, input.NumpadAdd, input.Numpad1, input.Numpad2, input.Numpad3,
	input.Numpad0, input.NumpadDecimal, input.NumpadEnter,
}

// keyAliases are accepted names that are neither a KeyboardEvent key nor a code.
var keyAliases = map[string]input.Key{
	"return":  input.Enter,
	"esc":     input.Escape,
	"control": input.ControlLeft,
	"ctrl":    input.ControlLeft,
	"alt":     input.AltLeft,
	"meta":    input.MetaLeft,
	"shift":   input.ShiftLeft,
}

var (
	// namedKeys indexes multi-character names case-insensitively.
	namedKeys = map[string]input.Key{}
	// charKeys indexes printable characters, shifted ones included.
	charKeys = map[rune]input.Key{}
)

func init() {
	addName := func(name string, k input.Key) {
		if _, taken := namedKeys[name]; !taken {
			namedKeys[name] = k
		}
	}
	addChar := func(s string, k input.Key) {
		r, size := utf8.DecodeRuneInString(s)
		if s == "" || size != len(s) || r < 0x20 || r == 0x7f {
			return
		}
		if _, taken := charKeys[r]; !taken {
			charKeys[r] = k
		}
	}

	for _, k := range allKeys {
		info := k.Info()
		if utf8.RuneCountInString(info.Key) > 1 {
			addName(strings.ToLower(info.Key), k)
		} else {
			addChar(info.Key, k)
		}
		addName(strings.ToLower(info.Code), k)
		if shifted, ok := k.Shift(); ok {
			addChar(shifted.Info().Key, shifted)
		}
	}
	for name, k := range keyAliases {
		addName(name, k)
	}
}

// LookupKey maps a key name to a keyboard key. It accepts a DOM
// KeyboardEvent.key name ("Enter", "F5", "ArrowDown"), a KeyboardEvent.code
// name ("KeyA", "Digit1", "NumpadEnter"), or a single printable character.
// Names are case-insensitive; characters are not.
func LookupKey(name string) (input.Key, error) {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if key, ok := charKeys[r]; ok {
			return key, nil
		}
	} else if key, ok := namedKeys[strings.ToLower(name)]; ok {
		return key, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}
