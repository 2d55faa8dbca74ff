package traces

import (
	"context"
	"fmt"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/taibf"
)

type Module struct {
	dscope.Module
}

// Save writes a record using the configured trace format.
type Save func(ctx context.Context, path string, rec *Record) error

func (Module) Save(
	config taibf.Config,
	logger logs.Logger,
) Save {
	return func(ctx context.Context, path string, rec *Record) error {
		format := FormatOf(path, config.TraceFormat)
		if err := Write(path, format, rec); err != nil {
			return fmt.Errorf("save trace %s: %w", path, err)
		}
		logger.InfoContext(ctx, "trace saved",
			"path", path,
			"format", format,
			"id", rec.ID,
			"states", len(rec.States),
		)
		return nil
	}
}
