package taibf

// MatchingStart scans backward from the LoopEnd at end and returns the index
// of its LoopStart, counting nested brackets on the way. It is the reference
// scan: Run resolves jumps through the Jumps table, which must agree with it
// for every balanced program.
func MatchingStart(instructions []Instruction, end int) (int, error) {
	starts, ends := 0, 1
	for j := end - 1; j >= 0; j-- {
		switch instructions[j] {
		case LoopStart:
			starts++
		case LoopEnd:
			ends++
		}
		if starts == ends {
			return j, nil
		}
	}
	return -1, ErrUnmatchedLoopEnd
}

// MatchingEnd is the forward counterpart of MatchingStart.
func MatchingEnd(instructions []Instruction, start int) (int, error) {
	starts, ends := 1, 0
	for j := start + 1; j < len(instructions); j++ {
		switch instructions[j] {
		case LoopStart:
			starts++
		case LoopEnd:
			ends++
		}
		if starts == ends {
			return j, nil
		}
	}
	return -1, ErrUnmatchedLoopStart
}

// Jumps maps each bracket index to the index of its partner. Other entries
// are -1. It is built in one pass with a stack, so each jump is a lookup
// instead of a MatchingStart or MatchingEnd scan.
type Jumps []int

func NewJumps(instructions []Instruction) (Jumps, error) {
	jumps := make(Jumps, len(instructions))
	var stack []int
	for i, inst := range instructions {
		jumps[i] = -1
		switch inst {
		case LoopStart:
			stack = append(stack, i)
		case LoopEnd:
			if len(stack) == 0 {
				return nil, &Fault{
					Index:       i,
					Instruction: inst,
					Err:         ErrUnmatchedLoopEnd,
				}
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jumps[start] = i
			jumps[i] = start
		}
	}
	if len(stack) > 0 {
		// innermost open bracket
		i := stack[len(stack)-1]
		return nil, &Fault{
			Index:       i,
			Instruction: instructions[i],
			Err:         ErrUnmatchedLoopStart,
		}
	}
	return jumps, nil
}
