package aggregator

import (
	"testing"

	"toolmux/internal/translate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(name, server string) translate.ToolDescriptor {
	return translate.ToolDescriptor{Name: name, Server: server}
}

func TestRegistryStartsEmpty(t *testing.T) {
	r := NewRegistry()

	set := r.Current()
	require.NotNil(t, set)
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, r.Tools())
}

func TestRegistrySwapNotifiesOnce(t *testing.T) {
	r := NewRegistry()

	r.Swap(newToolSet("c1", []translate.ToolDescriptor{descriptor("a", "s")}, nil))
	// A second swap before anyone drained the channel must not block.
	r.Swap(newToolSet("c2", []translate.ToolDescriptor{descriptor("b", "s")}, nil))

	select {
	case <-r.UpdateChannel():
	default:
		t.Fatal("expected a pending update notification")
	}
	select {
	case <-r.UpdateChannel():
		t.Fatal("notifications should coalesce to one pending signal")
	default:
	}

	assert.Equal(t, "c2", r.Current().CycleID)
}

func TestRegistrySnapshotSurvivesSwap(t *testing.T) {
	r := NewRegistry()
	r.Swap(newToolSet("old", []translate.ToolDescriptor{
		descriptor("lookup", "alpha"),
		descriptor("search", "alpha"),
	}, nil))

	held := r.Current()
	heldTools := held.Tools()

	r.Swap(newToolSet("new", []translate.ToolDescriptor{descriptor("search", "beta")}, nil))

	// The held snapshot is unaffected by the swap.
	assert.Equal(t, "old", held.CycleID)
	assert.Len(t, heldTools, 2)
	d, ok := held.Lookup("lookup")
	require.True(t, ok)
	assert.Equal(t, "alpha", d.Server)

	// New readers see the new snapshot.
	current := r.Current()
	assert.Equal(t, "new", current.CycleID)
	d, ok = current.Lookup("search")
	require.True(t, ok)
	assert.Equal(t, "beta", d.Server)
	_, ok = current.Lookup("lookup")
	assert.False(t, ok)
}

func TestToolSetSortedAndCopied(t *testing.T) {
	set := newToolSet("c", []translate.ToolDescriptor{
		descriptor("zeta", "s"),
		descriptor("alpha", "s"),
		descriptor("mid", "s"),
	}, nil)

	tools := set.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "alpha", tools[0].Name)
	assert.Equal(t, "mid", tools[1].Name)
	assert.Equal(t, "zeta", tools[2].Name)

	// Mutating the returned slice leaves the snapshot intact.
	tools[0].Name = "mutated"
	again := set.Tools()
	assert.Equal(t, "alpha", again[0].Name)
}
