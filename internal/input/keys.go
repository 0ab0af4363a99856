package input

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyCount is the number of keyboard slots tracked. Slots are USB HID usage
// IDs, which is also how SDL numbers its scancodes.
const KeyCount = 0xFF

// Scancodes the shells need by name.
const (
	KeyA         = 4
	Key1         = 30
	Key0         = 39
	KeyReturn    = 40
	KeyEscape    = 41
	KeyBackspace = 42
	KeyTab       = 43
	KeySpace     = 44
	KeyF1        = 58
	KeyRight     = 79
	KeyLeft      = 80
	KeyDown      = 81
	KeyUp        = 82
)

var namedKeys = map[int]string{
	KeyReturn:    "Return",
	KeyEscape:    "Escape",
	KeyBackspace: "Backspace",
	KeyTab:       "Tab",
	KeySpace:     "Space",
	45:           "-",
	46:           "=",
	47:           "[",
	48:           "]",
	49:           "\\",
	51:           ";",
	52:           "'",
	53:           "`",
	54:           ",",
	55:           ".",
	56:           "/",
	57:           "CapsLock",
	73:           "Insert",
	74:           "Home",
	75:           "PageUp",
	76:           "Delete",
	77:           "End",
	78:           "PageDown",
	KeyRight:     "Right",
	KeyLeft:      "Left",
	KeyDown:      "Down",
	KeyUp:        "Up",
	224:          "Left Ctrl",
	225:          "Left Shift",
	226:          "Left Alt",
	228:          "Right Ctrl",
	229:          "Right Shift",
	230:          "Right Alt",
}

// KeyName returns a readable name for a scancode.
func KeyName(key int) string {
	switch {
	case key >= KeyA && key < KeyA+26:
		return string(rune('A' + key - KeyA))
	case key >= Key1 && key < Key0:
		return string(rune('1' + key - Key1))
	case key == Key0:
		return "0"
	case key >= KeyF1 && key < KeyF1+12:
		return fmt.Sprintf("F%d", key-KeyF1+1)
	}
	if name, ok := namedKeys[key]; ok {
		return name
	}
	return fmt.Sprintf("Key %d", key)
}

// ParseKey maps a key name (as returned by KeyName, case-insensitive) or a
// decimal scancode back to its scancode.
func ParseKey(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("key name is empty")
	}
	if n, err := strconv.Atoi(name); err == nil {
		if n < 0 || n >= KeyCount {
			return 0, fmt.Errorf("scancode %d out of range", n)
		}
		return n, nil
	}
	for key := 0; key < KeyCount; key++ {
		if strings.EqualFold(KeyName(key), name) {
			return key, nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// KeyForRune maps a printable character typed in a terminal to the scancode
// of the key that produces it on a US layout.
func KeyForRune(r rune) (int, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return KeyA + int(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return KeyA + int(r-'A'), true
	case r >= '1' && r <= '9':
		return Key1 + int(r-'1'), true
	case r == '0':
		return Key0, true
	case r == ' ':
		return KeySpace, true
	}
	for key, name := range namedKeys {
		if len(name) == 1 && rune(name[0]) == r {
			return key, true
		}
	}
	return 0, false
}
