package debugs

import (
	"fmt"

	"github.com/reusee/taibf/taibf"
	"github.com/reusee/taibf/traces"
	"go.starlark.net/starlark"
)

// Globals exposes a run to scripts.
func Globals(rec *traces.Record) map[string]any {
	return map[string]any{
		"id":          rec.ID,
		"source":      rec.Source,
		"program":     rec.Program,
		"tape_length": rec.TapeLength,
		"steps":       rec.Steps,
		"history":     rec.States,
		"output":      rec.Output,
		"error":       rec.Error,
		"cell":        cellFunc(rec.States),
		// normalize(src) strips comments from a program
		"normalize": func(src string) string {
			return taibf.Encode(taibf.Decode(src))
		},
	}
}

// cellFunc returns cell(step, index), reading one cell of one state.
func cellFunc(history taibf.History) *starlark.Builtin {
	return starlark.NewBuiltin("cell", func(
		_ *starlark.Thread,
		fn *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var step, index int
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &step, &index); err != nil {
			return nil, err
		}
		if step < 0 || step >= len(history) {
			return nil, fmt.Errorf("%s: step %d out of range [0, %d)", fn.Name(), step, len(history))
		}
		tape := history[step].Tape
		if index < 0 || index >= len(tape) {
			return nil, fmt.Errorf("%s: index %d out of range [0, %d)", fn.Name(), index, len(tape))
		}
		return starlark.MakeInt(int(tape[index])), nil
	})
}
