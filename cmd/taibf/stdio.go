package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/reusee/taibf/taibf"
)

// teeOutput writes program output to the terminal and keeps a copy for the
// trace record.
type teeOutput struct {
	w    *bufio.Writer
	copy bytes.Buffer
}

func (t *teeOutput) WriteByte(b byte) error {
	t.copy.WriteByte(b)
	return t.w.WriteByte(b)
}

// terminalInput flushes pending output before blocking on a read, so
// interactive programs show their question first.
type terminalInput struct {
	r      *bufio.Reader
	out    *bufio.Writer
	prompt io.Writer
}

func (t *terminalInput) ReadByte() (byte, error) {
	if err := t.out.Flush(); err != nil {
		return 0, err
	}
	if t.prompt != nil {
		if _, err := io.WriteString(t.prompt, "INPUT: "); err != nil {
			return 0, err
		}
	}
	return t.r.ReadByte()
}

func dumpState(w io.Writer, state taibf.State) {
	var cells []string
	for i, c := range state.Tape {
		if c != 0 {
			cells = append(cells, fmt.Sprintf("%d:%d", i, c))
		}
	}
	fmt.Fprintf(w, "pointer=%d cell=%d cells=[%s]\n",
		state.Pointer,
		state.Cell(),
		strings.Join(cells, " "),
	)
}
