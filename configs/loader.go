package configs

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
)

// Loader reads CUE or TOML files, validated against a CUE schema. Files are
// loaded on first use. Earlier files take precedence.
type Loader struct {
	getRoots func() ([]rootInfo, error)
}

func NewLoader(filePaths []string, schemaSrc string) Loader {
	return Loader{
		getRoots: sync.OnceValues(func() (ret []rootInfo, err error) {
			ctx := cuecontext.New()

			var schema cue.Value
			if schemaSrc != "" {
				schema = ctx.CompileString("close({" + schemaSrc + "})")
				if err := schema.Err(); err != nil {
					return nil, err
				}
			}

			for _, filePath := range filePaths {
				value, err := loadFile(ctx, filePath)
				if err != nil {
					return nil, fmt.Errorf("load %s: %w", filePath, err)
				}

				if schema.Exists() {
					if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
						return nil, fmt.Errorf("validate %s: %w", filePath, err)
					}
				}

				ret = append(ret, rootInfo{
					value: value,
					path:  filePath,
				})
			}

			return
		}),
	}
}

func loadFile(ctx *cue.Context, filePath string) (cue.Value, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return cue.Value{}, err
	}

	var value cue.Value
	switch strings.ToLower(filepath.Ext(filePath)) {

	case ".toml":
		var m map[string]any
		if err := toml.Unmarshal(content, &m); err != nil {
			return cue.Value{}, err
		}
		value = ctx.Encode(m)

	default:
		value = ctx.CompileBytes(
			content,
			cue.Filename(filePath),
		)

	}

	if err := value.Err(); err != nil {
		return cue.Value{}, err
	}
	return value, nil
}

type rootInfo struct {
	value cue.Value
	path  string
}

func (l Loader) IterCueValues(path string) iter.Seq2[*cue.Value, error] {
	return func(yield func(*cue.Value, error) bool) {
		roots, err := l.getRoots()
		if err != nil {
			yield(nil, err)
			return
		}

		cuePath := cue.ParsePath(path)
		for _, info := range roots {
			value := info.value.LookupPath(cuePath)
			if value.Exists() {
				if !yield(&value, nil) {
					break
				}
			}
		}
	}
}

func (l Loader) AssignFirst(path string, target any) error {
	for value, err := range l.IterCueValues(path) {
		if err != nil {
			return err
		}
		if err := value.Decode(target); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
	return ErrValueNotFound
}

// Load reads and validates every file, reporting the first failure.
func (l Loader) Load() error {
	_, err := l.getRoots()
	return err
}
