package taibf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/reusee/taibf/logs"
)

type Machine struct {
	Config Config
	Output io.ByteWriter
	Input  io.ByteReader
	Logger logs.Logger
}

// Run executes instructions on a fresh tape and returns every state the
// machine passed through, starting with the all-zero state. On error the
// states produced before the failing instruction are returned with it.
func (m *Machine) Run(ctx context.Context, instructions []Instruction) (History, error) {
	config := m.Config.withEOFDefault()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := m.logger()

	history := History{NewState(config.TapeLength)}

	jumps, err := NewJumps(instructions)
	if err != nil {
		return history, err
	}

	for i := 0; i < len(instructions); {
		if err := ctx.Err(); err != nil {
			return history, err
		}

		inst := instructions[i]
		steps := history.Steps()
		if config.MaxSteps > 0 && steps >= config.MaxSteps {
			return history, &Fault{
				Index:       i,
				Instruction: inst,
				Step:        steps,
				Err:         ErrStepLimit,
			}
		}

		state, signal, err := m.step(history.Last(), inst, config)
		if err != nil {
			return history, &Fault{
				Index:       i,
				Instruction: inst,
				Step:        steps,
				Err:         err,
			}
		}
		history = append(history, state)

		logger.DebugContext(ctx, "step",
			"index", i,
			"instruction", inst,
			"signal", signal,
			"pointer", state.Pointer,
		)

		switch signal {
		case Advance:
			i++
		case JumpBackToMatchingStart:
			// land on the LoopStart so it is evaluated again
			i = jumps[i]
		case JumpPastMatchingEnd:
			i = jumps[i] + 1
		}
	}

	logger.InfoContext(ctx, "program finished",
		"instructions", len(instructions),
		"steps", history.Steps(),
		"pointer", history.Last().Pointer,
	)

	return history, nil
}

// Step applies one instruction to state. The returned state never shares tape
// storage with the argument.
func (m *Machine) Step(state State, inst Instruction) (State, Signal, error) {
	return m.step(state, inst, m.Config.withEOFDefault())
}

func (m *Machine) step(state State, inst Instruction, config Config) (State, Signal, error) {
	next := state.Clone()
	if next.Pointer < 0 || next.Pointer >= len(next.Tape) {
		return state, Advance, fmt.Errorf("%w: %d", ErrPointerOutOfRange, next.Pointer)
	}

	switch inst {

	case MovePointerRight:
		if next.Pointer+1 >= len(next.Tape) {
			return state, Advance, fmt.Errorf("%w: %d", ErrPointerOutOfRange, next.Pointer+1)
		}
		next.Pointer++

	case MovePointerLeft:
		if next.Pointer == 0 {
			return state, Advance, fmt.Errorf("%w: %d", ErrPointerOutOfRange, -1)
		}
		next.Pointer--

	case IncrementCell:
		next.Tape[next.Pointer]++

	case DecrementCell:
		next.Tape[next.Pointer]--

	case Output:
		if m.Output != nil {
			if err := m.Output.WriteByte(next.Cell()); err != nil {
				return state, Advance, fmt.Errorf("write output: %w", err)
			}
		}

	case Input:
		b, err := m.readByte()
		if errors.Is(err, io.EOF) {
			switch config.EOF {
			case EOFZero:
				next.Tape[next.Pointer] = 0
			case EOFKeep:
			default:
				return state, Advance, ErrInputExhausted
			}
		} else if err != nil {
			return state, Advance, fmt.Errorf("read input: %w", err)
		} else {
			next.Tape[next.Pointer] = b
		}

	case LoopStart:
		if next.Cell() == 0 {
			return next, JumpPastMatchingEnd, nil
		}

	case LoopEnd:
		if next.Cell() != 0 {
			return next, JumpBackToMatchingStart, nil
		}

	default:
		panic(fmt.Errorf("bad instruction: %v", inst))
	}

	return next, Advance, nil
}

func (m *Machine) readByte() (byte, error) {
	if m.Input == nil {
		return 0, io.EOF
	}
	return m.Input.ReadByte()
}

func (m *Machine) logger() logs.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

// Interpret decodes source and runs it on a machine with the given tape
// length and I/O.
func Interpret(ctx context.Context, source string, tapeLength int, output io.ByteWriter, input io.ByteReader) (History, error) {
	m := &Machine{
		Config: Config{
			TapeLength: tapeLength,
		},
		Output: output,
		Input:  input,
	}
	return m.Run(ctx, Decode(source))
}
