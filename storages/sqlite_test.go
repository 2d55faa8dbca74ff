package storages

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/dscope"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/modes"
	"github.com/reusee/taibf/taibf"
	"github.com/reusee/taibf/traces"
)

func TestSaveLoadRecord(t *testing.T) {
	dscope.New(
		new(logs.Module),
		new(Module),
	).Fork(
		modes.ForTest(t),
	).Call(func(
		openDB OpenDB,
	) {
		ctx := t.Context()
		db, err := openDB(ctx, filepath.Join(t.TempDir(), "runs.sqlite"))
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		src := "+++[>+<-]>."
		out := new(bytes.Buffer)
		history, err := taibf.Interpret(ctx, src, 2, out, nil)
		if err != nil {
			t.Fatal(err)
		}
		rec := traces.NewRecord("copy.bf", taibf.Decode(src), taibf.Config{TapeLength: 2}, history, out.Bytes(), nil)
		if err := db.SaveRecord(ctx, rec); err != nil {
			t.Fatal(err)
		}

		failed, err := taibf.Interpret(ctx, "<", 2, nil, nil)
		if err == nil {
			t.Fatal("should error")
		}
		rec2 := traces.NewRecord("bad.bf", taibf.Decode("<"), taibf.Config{TapeLength: 2}, failed, nil, err)
		if err := db.SaveRecord(ctx, rec2); err != nil {
			t.Fatal(err)
		}

		got, err := db.LoadRecord(ctx, rec.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Program != src || got.Source != "copy.bf" || got.Output != "\x03" {
			t.Fatalf("got %+v", got)
		}
		if !got.Time.Equal(rec.Time) {
			t.Fatalf("got %v", got.Time)
		}
		if len(got.States) != len(history) {
			t.Fatalf("got %d", len(got.States))
		}
		for i := range history {
			if !got.States[i].Equal(history[i]) {
				t.Fatalf("state %d: got %v", i, got.States[i])
			}
		}

		runs, err := db.ListRuns(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 2 {
			t.Fatalf("got %d", len(runs))
		}
		var sawError bool
		for _, run := range runs {
			if run.States != nil {
				t.Fatal("states should not be loaded")
			}
			if run.ID == rec2.ID {
				sawError = strings.Contains(run.Error, "pointer out of range")
			}
		}
		if !sawError {
			t.Fatalf("got %+v", runs)
		}

		_, err = db.LoadRecord(ctx, uuid.New())
		if !errors.Is(err, ErrRunNotFound) {
			t.Fatalf("got %v", err)
		}
	})
}

func TestSaveDuplicateRollsBack(t *testing.T) {
	ctx := t.Context()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "runs.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	history, err := taibf.Interpret(ctx, "+", 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := traces.NewRecord("", taibf.Decode("+"), taibf.Config{TapeLength: 1}, history, nil, nil)
	if err := db.SaveRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveRecord(ctx, rec); err == nil {
		t.Fatal("should error")
	}

	got, err := db.LoadHistory(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d", len(got))
	}
}

func TestListRunsOrder(t *testing.T) {
	ctx := t.Context()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "runs.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	history, err := taibf.Interpret(ctx, "+", 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	east := time.FixedZone("east", 8*3600)
	for _, c := range []struct {
		source string
		time   time.Time
	}{
		{"third", base.Add(120 * time.Millisecond)},
		{"second", base.Add(100 * time.Millisecond)},
		// earlier instant, later wall clock
		{"first", base.Add(-time.Second).In(east)},
		{"fourth", base.Add(time.Hour)},
	} {
		rec := traces.NewRecord(c.source, taibf.Decode("+"), taibf.Config{TapeLength: 1}, history, nil, nil)
		rec.Time = c.time
		if err := db.SaveRecord(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var sources []string
	for _, run := range runs {
		sources = append(sources, run.Source)
	}
	if str := strings.Join(sources, ","); str != "first,second,third,fourth" {
		t.Fatalf("got %s", str)
	}
	if !runs[0].Time.Equal(base.Add(-time.Second)) {
		t.Fatalf("got %v", runs[0].Time)
	}
}
