package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_lifecycle(t *testing.T) {
	e := New(TypeSnapshotCreate, "zroot/iocage/jails/web01@web01")
	assert.Equal(t, StatePending, e.State)

	e.Begin()
	assert.Equal(t, StateRunning, e.State)

	e.End()
	assert.Equal(t, StateSucceeded, e.State)
	assert.NoError(t, e.Err)
}

func TestEvent_fail(t *testing.T) {
	wantErr := errors.New("dataset is busy")
	e := New(TypeDatasetDestroy, "zroot/iocage/jails/web01").Begin()
	e.Fail(wantErr)

	assert.Equal(t, StateFailed, e.State)
	assert.ErrorIs(t, e.Err, wantErr)
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	var rec Recorder

	e := New(TypeSnapshotClone, "zroot/a@x")
	rec.Publish(ctx, e.Begin())
	rec.Publish(ctx, e.End())

	require.Len(t, rec.Events(), 2)
	assert.Equal(t, []string{
		"snapshot_clone zroot/a@x: running",
		"snapshot_clone zroot/a@x: succeeded",
	}, rec.Transitions())
}
