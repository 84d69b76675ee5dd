package changelog

import (
	"testing"
	"time"

	"github.com/tabular-labs/tabular/pkg/core"
)

func TestLog_Record(t *testing.T) {
	log := NewLog()

	log.Record(Change{Op: OpInsert, Key: core.NewIntKey(1)})
	log.Record(Change{Op: OpRemove, Key: core.NewIntKey(2)})

	if log.Len() != 2 {
		t.Fatalf("expected 2 changes, got %d", log.Len())
	}

	changes := log.Changes()
	if changes[0].Op != OpInsert || changes[1].Op != OpRemove {
		t.Error("changes should keep recording order")
	}
	for i, c := range changes {
		if c.ID == "" {
			t.Errorf("change %d should have a generated ID", i)
		}
		if c.At.IsZero() {
			t.Errorf("change %d should have a timestamp", i)
		}
	}
}

func TestLog_RecordKeepsProvidedFields(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	log := NewLog()
	log.Record(Change{ID: "fixed-id", Op: OpUpdate, At: at})

	c := log.Changes()[0]
	if c.ID != "fixed-id" {
		t.Errorf("expected preserved ID, got %q", c.ID)
	}
	if !c.At.Equal(at) {
		t.Errorf("expected preserved timestamp, got %v", c.At)
	}
}

func TestLog_Append(t *testing.T) {
	dst := NewLog()
	dst.Record(Change{Op: OpInsert, Key: core.NewIntKey(1)})
	dst.Record(Change{Op: OpInsert, Key: core.NewIntKey(2)})

	src := NewLog()
	src.Record(Change{Op: OpRemove, Key: core.NewIntKey(1)})
	src.Record(Change{Op: OpClear})
	src.Record(Change{Op: OpInsert, Key: core.NewIntKey(3)})

	dst.Append(src)

	if dst.Len() != 5 {
		t.Fatalf("expected 5 changes after append, got %d", dst.Len())
	}
	changes := dst.Changes()
	if changes[2].Op != OpRemove || changes[4].Op != OpInsert {
		t.Error("appended changes should follow existing ones in order")
	}

	// The source log is left untouched.
	if src.Len() != 3 {
		t.Errorf("source log should be unchanged, got %d changes", src.Len())
	}
}

func TestLog_AppendNil(t *testing.T) {
	log := NewLog()
	log.Record(Change{Op: OpInsert})

	log.Append(nil)

	if log.Len() != 1 {
		t.Errorf("appending nil should be a no-op, got %d changes", log.Len())
	}
}

func TestLog_ChangesReturnsCopy(t *testing.T) {
	log := NewLog()
	log.Record(Change{Op: OpInsert, Key: core.NewIntKey(9)})

	changes := log.Changes()
	changes[0].Op = OpClear

	if log.Changes()[0].Op != OpInsert {
		t.Error("mutating the returned slice should not affect the log")
	}
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpInsert, "insert"},
		{OpUpdate, "update"},
		{OpIncrement, "increment"},
		{OpRemove, "remove"},
		{OpClear, "clear"},
		{Op(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", int(tt.op), got, tt.want)
		}
	}
}
