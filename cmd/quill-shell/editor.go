package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/quill-lang/quill"
)

// errEOF reports that the user closed the input (ctrl-d on an empty line).
var errEOF = errors.New("end of input")

// lineEditor is a small raw-mode line editor with history. It reads one
// command at a time, prompting for continuation lines while the input is
// syntactically incomplete.
type lineEditor struct {
	prompt     string
	contPrompt string
	fd         int
	oldState   *term.State

	line   []rune
	cursor int

	history    []string
	historyPos int // index into history; len(history) = editing a new line
	saved      []rune
}

func newLineEditor(prompt, contPrompt string) *lineEditor {
	return &lineEditor{
		prompt:     prompt,
		contPrompt: contPrompt,
		fd:         int(os.Stdin.Fd()),
	}
}

// readCommand reads a complete command, possibly spanning multiple lines.
func (e *lineEditor) readCommand(interp *quill.Interp) (string, error) {
	input := ""
	prompt := e.prompt
	for {
		line, err := e.readLine(prompt)
		if err != nil {
			return "", err
		}
		if input == "" {
			input = line
		} else {
			input += "\n" + line
		}
		if interp.Complete(input) {
			if input != "" {
				e.history = append(e.history, input)
			}
			e.historyPos = len(e.history)
			return input, nil
		}
		prompt = e.contPrompt
	}
}

// readLine reads a single line in raw mode.
func (e *lineEditor) readLine(prompt string) (string, error) {
	oldState, err := term.MakeRaw(e.fd)
	if err != nil {
		return "", err
	}
	e.oldState = oldState
	defer e.restore()

	e.line = nil
	e.cursor = 0
	fmt.Print(prompt)

	buf := make([]byte, 64)
	var pending []byte
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return "", err
		}
		pending = append(pending, buf[:n]...)

		for len(pending) > 0 {
			key, size := decodeKey(pending)
			if size == 0 {
				break // incomplete escape sequence
			}
			pending = pending[size:]

			switch key {
			case keyEnter:
				fmt.Print("\r\n")
				return string(e.line), nil
			case keyCtrlD:
				if len(e.line) == 0 {
					return "", errEOF
				}
			case keyCtrlC:
				e.line = nil
				e.cursor = 0
				fmt.Print("^C\r\n")
			case keyBackspace:
				if e.cursor > 0 {
					e.line = append(e.line[:e.cursor-1], e.line[e.cursor:]...)
					e.cursor--
				}
			case keyLeft:
				if e.cursor > 0 {
					e.cursor--
				}
			case keyRight:
				if e.cursor < len(e.line) {
					e.cursor++
				}
			case keyUp:
				e.recallHistory(-1)
			case keyDown:
				e.recallHistory(1)
			case keyHome:
				e.cursor = 0
			case keyEnd:
				e.cursor = len(e.line)
			default:
				if key >= ' ' {
					e.line = append(e.line[:e.cursor], append([]rune{rune(key)}, e.line[e.cursor:]...)...)
					e.cursor++
				}
			}
			e.redraw(prompt)
		}
	}
}

// recallHistory replaces the edit line with an adjacent history entry.
func (e *lineEditor) recallHistory(dir int) {
	if len(e.history) == 0 {
		return
	}
	if e.historyPos == len(e.history) && dir < 0 {
		e.saved = append([]rune(nil), e.line...)
	}
	pos := e.historyPos + dir
	if pos < 0 || pos > len(e.history) {
		return
	}
	e.historyPos = pos
	if pos == len(e.history) {
		e.line = append([]rune(nil), e.saved...)
	} else {
		e.line = []rune(e.history[pos])
	}
	e.cursor = len(e.line)
}

// redraw repaints the current line and positions the cursor.
func (e *lineEditor) redraw(prompt string) {
	fmt.Print("\r\x1b[K")
	fmt.Print(prompt)
	fmt.Print(string(e.line))
	if back := len(e.line) - e.cursor; back > 0 {
		fmt.Printf("\x1b[%dD", back)
	}
}

func (e *lineEditor) restore() {
	if e.oldState != nil {
		term.Restore(e.fd, e.oldState)
		e.oldState = nil
	}
}

// Key codes returned by decodeKey. Printable runes are returned as
// themselves.
const (
	keyEnter     = '\r'
	keyCtrlC     = 3
	keyCtrlD     = 4
	keyBackspace = 127

	// Synthetic codes for escape sequences, outside the rune range.
	keyUp = 0x110000 + iota
	keyDown
	keyLeft
	keyRight
	keyHome
	keyEnd
)

// decodeKey decodes one key press from raw input bytes, returning the key
// and how many bytes it consumed. Returns size 0 when the buffer holds an
// incomplete escape sequence.
func decodeKey(b []byte) (rune, int) {
	if len(b) == 0 {
		return 0, 0
	}
	if b[0] != 0x1b {
		if b[0] == '\n' {
			return keyEnter, 1
		}
		if b[0] == 8 {
			return keyBackspace, 1
		}
		return rune(b[0]), 1
	}
	if len(b) < 3 {
		return 0, 0
	}
	if b[1] != '[' {
		return rune(b[0]), 1
	}
	switch b[2] {
	case 'A':
		return keyUp, 3
	case 'B':
		return keyDown, 3
	case 'C':
		return keyRight, 3
	case 'D':
		return keyLeft, 3
	case 'H':
		return keyHome, 3
	case 'F':
		return keyEnd, 3
	}
	return rune(b[2]), 3
}
