// Package text loads the prompts shown at mode transitions.
package text

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Delimiter separates the fields of a text file.
const Delimiter = '\\'

// DisplayText holds the three prompts, in file order.
type DisplayText struct {
	Intro    string
	Config   string
	Practice string
}

// Default returns the built-in English prompts.
func Default() DisplayText {
	return DisplayText{
		Intro: "Sequence trainer\n" +
			"Press the inputs of your sequence in order: keys, joystick buttons or hat directions.\n",
		Config: "\nRecording. Press inputs to add them, Return to start practicing, Backspace to start over.\n",
		Practice: "\nPracticing. Play the sequence; each input shows its letter and the ticks since the previous one.\n" +
			"Backspace records a new sequence.\n",
	}
}

// Parse reads up to three backslash-delimited fields. Missing fields are empty.
func Parse(r io.Reader) (DisplayText, error) {
	br := bufio.NewReader(r)
	var fields [3]string
	for i := range fields {
		field, err := readField(br)
		if err != nil {
			return DisplayText{}, err
		}
		fields[i] = field
	}
	return DisplayText{Intro: fields[0], Config: fields[1], Practice: fields[2]}, nil
}

func readField(br *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		r, _, err := br.ReadRune()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		if r == Delimiter {
			return b.String(), nil
		}
		b.WriteRune(r)
	}
}

// Load parses the text file at path.
func Load(path string) (DisplayText, error) {
	file, err := os.Open(path)
	if err != nil {
		return DisplayText{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only text file.
			_ = cerr
		}
	}()
	dt, err := Parse(file)
	if err != nil {
		return DisplayText{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return dt, nil
}

// LoadOrDefault loads path, falling back to Default when path is empty.
func LoadOrDefault(path string) (DisplayText, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
