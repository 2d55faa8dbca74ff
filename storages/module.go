package storages

import (
	"context"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/logs"
)

type Module struct {
	dscope.Module
}

type OpenDB func(ctx context.Context, path string) (*DB, error)

func (Module) OpenDB(
	logger logs.Logger,
) OpenDB {
	return func(ctx context.Context, path string) (*DB, error) {
		db, err := Open(ctx, path)
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "database opened", "path", path)
		return db, nil
	}
}
