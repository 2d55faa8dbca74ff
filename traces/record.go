package traces

import (
	"time"

	"github.com/google/uuid"
	"github.com/reusee/taibf/taibf"
)

// Record is one run of a program with its full state history.
type Record struct {
	ID         uuid.UUID     `json:"id" cbor:"1,keyasint"`
	Time       time.Time     `json:"time" cbor:"2,keyasint"`
	Source     string        `json:"source,omitempty" cbor:"3,keyasint,omitempty"`
	Program    string        `json:"program" cbor:"4,keyasint"`
	TapeLength int           `json:"tape_length" cbor:"5,keyasint"`
	Steps      int           `json:"steps" cbor:"6,keyasint"`
	States     taibf.History `json:"states" cbor:"7,keyasint"`
	Output     string        `json:"output,omitempty" cbor:"8,keyasint,omitempty"`
	Error      string        `json:"error,omitempty" cbor:"9,keyasint,omitempty"`
}

func NewRecord(
	source string,
	instructions []taibf.Instruction,
	config taibf.Config,
	history taibf.History,
	output []byte,
	runErr error,
) *Record {
	rec := &Record{
		ID:         uuid.New(),
		Time:       time.Now(),
		Source:     source,
		Program:    taibf.Encode(instructions),
		TapeLength: config.TapeLength,
		Steps:      history.Steps(),
		States:     history,
		Output:     string(output),
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	return rec
}
