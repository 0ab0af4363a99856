package trainer

import (
	"fmt"
	"io"

	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/text"
)

const selectDevicePrompt = "Press any button on the joystick you want to train.\n"

// Printer renders the feedback stream as plain text.
type Printer struct {
	w       io.Writer
	text    text.DisplayText
	keyName func(int) string
	err     error
}

// NewPrinter returns a printer writing to w. keyName may be nil, in which
// case input.KeyName is used.
func NewPrinter(w io.Writer, dt text.DisplayText, keyName func(int) string) *Printer {
	if keyName == nil {
		keyName = input.KeyName
	}
	return &Printer{w: w, text: dt, keyName: keyName}
}

// Start prints the intro and the prompt for the initial mode.
func (p *Printer) Start(initial Mode) {
	p.printf("%s", p.text.Intro)
	if initial == ModeSelectDevice {
		p.printf("%s", selectDevicePrompt)
		return
	}
	p.printf("%s", p.text.Config)
}

// Err returns the first write error, if any.
func (p *Printer) Err() error {
	return p.err
}

// Emit implements Sink.
func (p *Printer) Emit(ev Event) {
	switch ev.Kind {
	case EventRecorded:
		p.printf("%s (%s)\n", p.Describe(ev.Action), ev.Label)
	case EventGap:
		p.printf(" %d ", ev.Gap)
	case EventMiss:
		p.printf(" MISS ")
	case EventClassified, EventNoSuchInput:
		p.printf("%s", ev.Label)
	case EventBreak:
		p.printf("\n")
	case EventModeChanged:
		switch ev.Mode {
		case ModePracticing:
			p.printf("%s", p.text.Practice)
		case ModeRecording:
			p.printf("%s", p.text.Config)
		}
	case EventDeviceLatched:
		p.printf("Joystick %d selected\n", ev.Device)
	}
}

// Describe names the physical source of an action.
func (p *Printer) Describe(a input.Action) string {
	switch a.Kind {
	case input.KindButton:
		return fmt.Sprintf("Joystick %d, button %d", a.Device, a.Button)
	case input.KindHat:
		return fmt.Sprintf("Joystick %d, hat %c", a.Device, a.Hat.Numpad())
	case input.KindKey:
		return fmt.Sprintf("%s key", p.keyName(a.Key))
	default:
		return a.String()
	}
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintf(p.w, format, args...); err != nil {
		p.err = err
	}
}
