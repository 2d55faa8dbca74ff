package taibf

import (
	"fmt"
	"strings"
)

type Instruction uint8

const (
	MovePointerRight Instruction = iota + 1
	MovePointerLeft
	IncrementCell
	DecrementCell
	Output
	Input
	LoopStart
	LoopEnd
)

var instructionChars = [...]rune{
	MovePointerRight: '>',
	MovePointerLeft:  '<',
	IncrementCell:    '+',
	DecrementCell:    '-',
	Output:           '.',
	Input:            ',',
	LoopStart:        '[',
	LoopEnd:          ']',
}

func ParseInstruction(r rune) (Instruction, bool) {
	switch r {
	case '>':
		return MovePointerRight, true
	case '<':
		return MovePointerLeft, true
	case '+':
		return IncrementCell, true
	case '-':
		return DecrementCell, true
	case '.':
		return Output, true
	case ',':
		return Input, true
	case '[':
		return LoopStart, true
	case ']':
		return LoopEnd, true
	}
	return 0, false
}

func (i Instruction) String() string {
	if i >= MovePointerRight && i <= LoopEnd {
		return string(instructionChars[i])
	}
	return fmt.Sprintf("Instruction(%d)", uint8(i))
}

func (i Instruction) IsLoopStart() bool {
	return i == LoopStart
}

func (i Instruction) IsLoopEnd() bool {
	return i == LoopEnd
}

// Decode returns the instructions of source in order. Characters outside the
// instruction set are comments.
func Decode(source string) []Instruction {
	var ret []Instruction
	for _, r := range source {
		if inst, ok := ParseInstruction(r); ok {
			ret = append(ret, inst)
		}
	}
	return ret
}

// Encode is the inverse of Decode for a comment-free program.
func Encode(instructions []Instruction) string {
	var b strings.Builder
	b.Grow(len(instructions))
	for _, inst := range instructions {
		b.WriteString(inst.String())
	}
	return b.String()
}
