package tracing

import (
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/sim"
)

// AccessTableName is the table into which AccessTracer records.
const AccessTableName = "cache_access"

// AccessRecord is a row written by AccessTracer.
type AccessRecord struct {
	RunID     string
	Seq       uint64
	Component string
	Kind      string
	EntryKey  string
	Value     int
	Cause     string
}

// AccessTracer records every cache and memory event into a DataRecorder.
type AccessTracer struct {
	recorder datarecording.DataRecorder
	runID    string
	seq      uint64
}

// NewAccessTracer creates an AccessTracer and the table it writes into.
func NewAccessTracer(
	recorder datarecording.DataRecorder,
	runID string,
) *AccessTracer {
	recorder.CreateTable(AccessTableName, AccessRecord{})

	return &AccessTracer{
		recorder: recorder,
		runID:    runID,
	}
}

// Func records the event described by the hook context.
func (t *AccessTracer) Func(ctx sim.HookCtx) {
	evt, ok := DecodeEvent(ctx)
	if !ok {
		return
	}

	t.seq++
	t.recorder.InsertData(AccessTableName, AccessRecord{
		RunID:     t.runID,
		Seq:       t.seq,
		Component: evt.Component,
		Kind:      evt.Kind,
		EntryKey:  evt.Key,
		Value:     evt.Value,
		Cause:     evt.Cause,
	})
}

// NumRecords returns the number of records written so far.
func (t *AccessTracer) NumRecords() uint64 {
	return t.seq
}
