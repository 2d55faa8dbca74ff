package taibf

import (
	"encoding/json"
	"fmt"
	"slices"
)

type Tape []byte

// MarshalJSON encodes cells as numbers instead of base64.
func (t Tape) MarshalJSON() ([]byte, error) {
	cells := make([]int, len(t))
	for i, c := range t {
		cells[i] = int(c)
	}
	return json.Marshal(cells)
}

func (t *Tape) UnmarshalJSON(data []byte) error {
	var cells []int
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	tape := make(Tape, len(cells))
	for i, c := range cells {
		if c < 0 || c > 255 {
			return fmt.Errorf("cell %d out of byte range: %d", i, c)
		}
		tape[i] = byte(c)
	}
	*t = tape
	return nil
}

type State struct {
	Pointer int  `json:"pointer"`
	Tape    Tape `json:"tape"`
}

func NewState(tapeLength int) State {
	return State{
		Tape: make(Tape, tapeLength),
	}
}

func (s State) Cell() byte {
	return s.Tape[s.Pointer]
}

func (s State) Clone() State {
	return State{
		Pointer: s.Pointer,
		Tape:    slices.Clone(s.Tape),
	}
}

func (s State) Equal(o State) bool {
	return s.Pointer == o.Pointer && slices.Equal(s.Tape, o.Tape)
}

func (s State) String() string {
	return fmt.Sprintf("{pos:%d tape:%v}", s.Pointer, []byte(s.Tape))
}

type History []State

func (h History) Last() State {
	return h[len(h)-1]
}

// Steps is the number of executed instructions.
func (h History) Steps() int {
	if len(h) == 0 {
		return 0
	}
	return len(h) - 1
}

type Signal uint8

const (
	Advance Signal = iota
	JumpBackToMatchingStart
	JumpPastMatchingEnd
)

func (s Signal) String() string {
	switch s {
	case Advance:
		return "advance"
	case JumpBackToMatchingStart:
		return "jump-back"
	case JumpPastMatchingEnd:
		return "jump-past"
	}
	return fmt.Sprintf("Signal(%d)", uint8(s))
}
