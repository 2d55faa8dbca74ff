package taibf

import (
	"errors"
	"fmt"
)

var (
	ErrPointerOutOfRange  = errors.New("pointer out of range")
	ErrUnmatchedLoopStart = errors.New("unmatched loop start")
	ErrUnmatchedLoopEnd   = errors.New("unmatched loop end")
	ErrInputExhausted     = errors.New("input exhausted")
	ErrStepLimit          = errors.New("step limit exceeded")
)

// Fault locates an execution error in the program.
type Fault struct {
	Index       int
	Instruction Instruction
	Step        int
	Err         error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("instruction %d (%s) at step %d: %v", f.Index, f.Instruction, f.Step, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
