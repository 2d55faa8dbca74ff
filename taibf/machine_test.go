package taibf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func tapes(history History) string {
	var parts []string
	for _, state := range history {
		parts = append(parts, fmt.Sprintf("%d%v", state.Pointer, []byte(state.Tape)))
	}
	return strings.Join(parts, " ")
}

func TestRunEmpty(t *testing.T) {
	m := &Machine{
		Config: Config{TapeLength: 4},
	}
	history, err := m.Run(t.Context(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("got %v", history)
	}
	if !history[0].Equal(State{Pointer: 0, Tape: Tape{0, 0, 0, 0}}) {
		t.Fatalf("got %v", history[0])
	}

	// no default tape length inside the machine
	history, err = Interpret(t.Context(), "", 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || len(history[0].Tape) != 0 {
		t.Fatalf("got %v", history)
	}
	_, err = Interpret(t.Context(), "+", 0, nil, nil)
	if !errors.Is(err, ErrPointerOutOfRange) {
		t.Fatalf("got %v", err)
	}
}

func TestRunMovePointerRight(t *testing.T) {
	m := &Machine{
		Config: Config{TapeLength: 3},
	}
	history, err := m.Run(t.Context(), []Instruction{MovePointerRight})
	if err != nil {
		t.Fatal(err)
	}
	if str := tapes(history); str != "0[0 0 0] 1[0 0 0]" {
		t.Fatalf("got %s", str)
	}
}

func TestRunLoop(t *testing.T) {
	history, err := Interpret(t.Context(), "++[-]", 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if str := tapes(history); str != "0[0] 0[1] 0[2] 0[2] 0[1] 0[1] 0[1] 0[0] 0[0]" {
		t.Fatalf("got %s", str)
	}
	if len(history) != 9 {
		t.Fatalf("got %d", len(history))
	}
	if history.Steps() != 8 {
		t.Fatalf("got %d", history.Steps())
	}
}

func TestRunSkipLoop(t *testing.T) {
	history, err := Interpret(t.Context(), "[+>+]+", 2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if str := tapes(history); str != "0[0 0] 0[0 0] 0[1 0]" {
		t.Fatalf("got %s", str)
	}
}

func TestRunNestedLoop(t *testing.T) {
	// 3 * 4 into the third cell
	history, err := Interpret(t.Context(), "+++[>++++[>+<-]<-]", 3, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	last := history.Last()
	if !last.Equal(State{Pointer: 0, Tape: Tape{0, 0, 12}}) {
		t.Fatalf("got %v", last)
	}
}

func TestRunWrap(t *testing.T) {
	history, err := Interpret(t.Context(), "-", 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c := history.Last().Cell(); c != 255 {
		t.Fatalf("got %d", c)
	}

	m := &Machine{}
	state, signal, err := m.Step(State{Tape: Tape{255}}, IncrementCell)
	if err != nil {
		t.Fatal(err)
	}
	if state.Cell() != 0 || signal != Advance {
		t.Fatalf("got %v %v", state, signal)
	}
}

func TestStep(t *testing.T) {
	m := &Machine{}
	for _, c := range []struct {
		state  State
		inst   Instruction
		want   State
		signal Signal
	}{
		{State{0, Tape{0, 0}}, MovePointerRight, State{1, Tape{0, 0}}, Advance},
		{State{1, Tape{0, 0}}, MovePointerLeft, State{0, Tape{0, 0}}, Advance},
		{State{0, Tape{0}}, IncrementCell, State{0, Tape{1}}, Advance},
		{State{0, Tape{1}}, DecrementCell, State{0, Tape{0}}, Advance},
		{State{0, Tape{0}}, LoopStart, State{0, Tape{0}}, JumpPastMatchingEnd},
		{State{0, Tape{3}}, LoopStart, State{0, Tape{3}}, Advance},
		{State{0, Tape{3}}, LoopEnd, State{0, Tape{3}}, JumpBackToMatchingStart},
		{State{0, Tape{0}}, LoopEnd, State{0, Tape{0}}, Advance},
	} {
		got, signal, err := m.Step(c.state, c.inst)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(c.want) || signal != c.signal {
			t.Fatalf("%s on %v: got %v %v", c.inst, c.state, got, signal)
		}
	}
}

func TestHistoryNoAliasing(t *testing.T) {
	history, err := Interpret(t.Context(), "+>+", 2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	history[1].Tape[0] = 42
	if str := tapes(history); str != "0[0 0] 0[42 0] 1[1 0] 1[1 1]" {
		t.Fatalf("got %s", str)
	}
}

func TestHelloWorld(t *testing.T) {
	src := `++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.`
	out := new(bytes.Buffer)
	history, err := Interpret(t.Context(), src, 10, out, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "Hello World!\n" {
		t.Fatalf("got %q", out.String())
	}
	if len(history) <= len(Decode(src)) {
		t.Fatalf("got %d", len(history))
	}
}

func TestInput(t *testing.T) {
	out := new(bytes.Buffer)
	history, err := Interpret(t.Context(), ",+.,.", 1, out, strings.NewReader("ab"))
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "bb" {
		t.Fatalf("got %q", out.String())
	}
	if c := history.Last().Cell(); c != 'b' {
		t.Fatalf("got %d", c)
	}
}

func TestInputExhausted(t *testing.T) {
	run := func(policy EOFPolicy) (History, error) {
		m := &Machine{
			Config: Config{
				TapeLength: 1,
				EOF:        policy,
			},
			Input: strings.NewReader(""),
		}
		return m.Run(t.Context(), Decode("+++,"))
	}

	history, err := run(EOFZero)
	if err != nil {
		t.Fatal(err)
	}
	if c := history.Last().Cell(); c != 0 {
		t.Fatalf("got %d", c)
	}

	history, err = run(EOFKeep)
	if err != nil {
		t.Fatal(err)
	}
	if c := history.Last().Cell(); c != 3 {
		t.Fatalf("got %d", c)
	}

	history, err = run(EOFFail)
	if !errors.Is(err, ErrInputExhausted) {
		t.Fatalf("got %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("got %d", len(history))
	}

	// no input source behaves as an empty one
	history, err = Interpret(t.Context(), "+,", 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c := history.Last().Cell(); c != 0 {
		t.Fatalf("got %d", c)
	}
}

func TestPointerOutOfRange(t *testing.T) {
	history, err := Interpret(t.Context(), "+<", 2, nil, nil)
	if !errors.Is(err, ErrPointerOutOfRange) {
		t.Fatalf("got %v", err)
	}
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("got %T", err)
	}
	if fault.Index != 1 || fault.Instruction != MovePointerLeft || fault.Step != 1 {
		t.Fatalf("got %+v", fault)
	}
	if len(history) != 2 {
		t.Fatalf("got %d", len(history))
	}

	_, err = Interpret(t.Context(), ">>", 2, nil, nil)
	if !errors.Is(err, ErrPointerOutOfRange) {
		t.Fatalf("got %v", err)
	}
}

func TestRunUnbalanced(t *testing.T) {
	history, err := Interpret(t.Context(), "++]", 1, nil, nil)
	if !errors.Is(err, ErrUnmatchedLoopEnd) {
		t.Fatalf("got %v", err)
	}
	// nothing executed
	if len(history) != 1 {
		t.Fatalf("got %d", len(history))
	}

	_, err = Interpret(t.Context(), "[", 1, nil, nil)
	if !errors.Is(err, ErrUnmatchedLoopStart) {
		t.Fatalf("got %v", err)
	}
}

func TestStepLimit(t *testing.T) {
	m := &Machine{
		Config: Config{
			TapeLength: 1,
			MaxSteps:   10,
		},
	}
	history, err := m.Run(t.Context(), Decode("+[]"))
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("got %v", err)
	}
	if len(history) != 11 {
		t.Fatalf("got %d", len(history))
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	history, err := Interpret(ctx, "+", 1, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d", len(history))
	}
}

func TestRunBadConfig(t *testing.T) {
	m := &Machine{
		Config: Config{
			TapeLength: -1,
			EOF:        "block",
		},
	}
	_, err := m.Run(t.Context(), nil)
	if err == nil {
		t.Fatal("should error")
	}
	if !strings.Contains(err.Error(), "bad tape length") ||
		!strings.Contains(err.Error(), "bad eof policy") {
		t.Fatalf("got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) WriteByte(byte) error {
	return errors.New("closed")
}

func TestOutputError(t *testing.T) {
	_, err := Interpret(t.Context(), "+.", 1, failingWriter{}, nil)
	if err == nil || !strings.Contains(err.Error(), "write output: closed") {
		t.Fatalf("got %v", err)
	}
}
