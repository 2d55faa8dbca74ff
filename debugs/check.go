package debugs

import (
	"context"
	"errors"
	"fmt"

	"github.com/reusee/taibf/logs"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Check runs a Starlark script against globals. The script fails the check by
// calling fail() or by any runtime error.
type Check func(ctx context.Context, name string, src []byte, globals map[string]any) error

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
}

func (Module) Check(
	logger logs.Logger,
) Check {
	return func(ctx context.Context, name string, src []byte, globals map[string]any) error {
		predeclared := make(starlark.StringDict, len(globals))
		for k, v := range globals {
			predeclared[k] = toStarlarkValue(v)
		}

		thread := &starlark.Thread{
			Name: name,
			Print: func(_ *starlark.Thread, msg string) {
				logger.InfoContext(ctx, "check: "+msg, "script", name)
			},
		}
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				thread.Cancel(context.Cause(ctx).Error())
			case <-done:
			}
		}()

		if _, err := starlark.ExecFileOptions(fileOptions, thread, name, src, predeclared); err != nil {
			var evalErr *starlark.EvalError
			if errors.As(err, &evalErr) {
				return fmt.Errorf("check %s: %s", name, evalErr.Backtrace())
			}
			return fmt.Errorf("check %s: %w", name, err)
		}
		logger.InfoContext(ctx, "check passed", "script", name)
		return nil
	}
}
