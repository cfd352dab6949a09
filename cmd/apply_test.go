package cmd

import (
	"bytes"
	"strings"
	"testing"

	"emby-tagger/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOperations(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		ops, err := readOperations(strings.NewReader(`[{"type":"map","remoteItemId":1,"localItemId":2},{"type":"create","remoteItemId":3}]`))
		require.NoError(t, err)
		assert.Equal(t, []reconcile.Operation{
			{Type: reconcile.OpMap, RemoteItemID: 1, LocalItemID: 2},
			{Type: reconcile.OpCreate, RemoteItemID: 3},
		}, ops)
	})

	t.Run("object", func(t *testing.T) {
		ops, err := readOperations(strings.NewReader(`  {"operations":[{"type":"unmap","remoteItemId":5}]}`))
		require.NoError(t, err)
		assert.Equal(t, []reconcile.Operation{{Type: reconcile.OpUnmap, RemoteItemID: 5}}, ops)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := readOperations(strings.NewReader(`[{"type":`))
		assert.Error(t, err)
	})
}

func TestQueueOperations(t *testing.T) {
	view := sampleReport()
	ops := []reconcile.Operation{
		{Type: reconcile.OpCreate, RemoteItemID: 11},
		{Type: reconcile.OpRefresh, RemoteItemID: 10},
		{Type: reconcile.OpMap, RemoteItemID: 11, LocalItemID: 7},
	}

	decisions := queueOperations(view, ops)

	// The later map replaces the create for item 11, which keeps its first-seen position.
	assert.Equal(t, []reconcile.Operation{
		{Type: reconcile.OpRefresh, RemoteItemID: 10},
		{Type: reconcile.OpMap, RemoteItemID: 11, LocalItemID: 7},
	}, decisions.Pending())

	decisions.Resolve(reconcile.BatchResult{Success: []uint{10}})
	assert.Equal(t, reconcile.DecisionResolved, decisions.State(10))
	assert.Equal(t, reconcile.DecisionPending, decisions.State(11))
}

func TestRenderOperations(t *testing.T) {
	out := renderOperations(sampleReport(), []reconcile.Operation{
		{Type: reconcile.OpMap, RemoteItemID: 11, LocalItemID: 7},
		{Type: reconcile.OpCreate, RemoteItemID: 99},
	})

	assert.Contains(t, out, "Aliens")
	assert.Contains(t, out, "(not in view)")
}

func TestConfirmBatch(t *testing.T) {
	var out bytes.Buffer

	assert.True(t, confirmBatch(strings.NewReader("yes\n"), &out, 2))
	assert.Contains(t, out.String(), "apply 2 operation(s)")

	assert.False(t, confirmBatch(strings.NewReader("no\n"), &out, 2))
	assert.False(t, confirmBatch(strings.NewReader(""), &out, 2))

	yesConfirm = true
	t.Cleanup(func() { yesConfirm = false })
	assert.True(t, confirmBatch(strings.NewReader(""), &out, 2))
}

func TestCheckInteractive(t *testing.T) {
	assert.NoError(t, checkInteractive("ops.json"))
	assert.ErrorIs(t, checkInteractive("-"), errStdinNeedsYes)

	yesConfirm = true
	assert.NoError(t, checkInteractive("-"))
	yesConfirm = false

	dryRunApply = true
	t.Cleanup(func() { dryRunApply = false })
	assert.NoError(t, checkInteractive("-"))
}
