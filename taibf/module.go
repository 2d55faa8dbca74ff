package taibf

import (
	"io"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/logs"
)

type Module struct {
	dscope.Module
}

type NewMachine func(output io.ByteWriter, input io.ByteReader) *Machine

func (Module) NewMachine(
	config Config,
	logger logs.Logger,
) NewMachine {
	return func(output io.ByteWriter, input io.ByteReader) *Machine {
		return &Machine{
			Config: config,
			Output: output,
			Input:  input,
			Logger: logger,
		}
	}
}
