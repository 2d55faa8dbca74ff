package taibf

import (
	"errors"
	"fmt"

	"github.com/reusee/taibf/configs"
)

type EOFPolicy string

const (
	// EOFZero stores 0 into the cell when input is exhausted.
	EOFZero EOFPolicy = "zero"
	// EOFKeep leaves the cell unchanged.
	EOFKeep EOFPolicy = "keep"
	// EOFFail aborts the run with ErrInputExhausted.
	EOFFail EOFPolicy = "fail"
)

const DefaultTapeLength = 100

const ConfigSchema = `
tape_length?: int & >0
eof?: "zero" | "keep" | "fail"
max_steps?: int & >=0
trace_format?: "json" | "cbor"
`

type Config struct {
	TapeLength  int       `json:"tape_length"`
	EOF         EOFPolicy `json:"eof"`
	MaxSteps    int       `json:"max_steps"`
	TraceFormat string    `json:"trace_format"`
}

// WithDefaults fills unset options for configs assembled from files and
// flags. A Machine takes its tape length as given.
func (c Config) WithDefaults() Config {
	if c.TapeLength == 0 {
		c.TapeLength = DefaultTapeLength
	}
	return c.withEOFDefault()
}

func (c Config) withEOFDefault() Config {
	if c.EOF == "" {
		c.EOF = EOFZero
	}
	return c
}

func (c Config) Validate() error {
	var errs []error
	if c.TapeLength < 0 {
		errs = append(errs, fmt.Errorf("bad tape length: %d", c.TapeLength))
	}
	switch c.EOF {
	case EOFZero, EOFKeep, EOFFail:
	default:
		errs = append(errs, fmt.Errorf("bad eof policy: %q", c.EOF))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("bad max steps: %d", c.MaxSteps))
	}
	switch c.TraceFormat {
	case "", "json", "cbor":
	default:
		errs = append(errs, fmt.Errorf("bad trace format: %q", c.TraceFormat))
	}
	return errors.Join(errs...)
}

func (Module) Loader() configs.Loader {
	return configs.NewLoader(nil, ConfigSchema)
}

func (Module) Config(
	loader configs.Loader,
) Config {
	return Config{
		TapeLength:  configs.First[int](loader, "tape_length"),
		EOF:         configs.First[EOFPolicy](loader, "eof"),
		MaxSteps:    configs.First[int](loader, "max_steps"),
		TraceFormat: configs.First[string](loader, "trace_format"),
	}.WithDefaults()
}
