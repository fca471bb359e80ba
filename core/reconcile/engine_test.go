package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keySet(keys ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func desired(t *testing.T, key string, fields map[string]any) Desired {
	t.Helper()
	fields["fahrzeug-id"] = key
	hash, err := Fingerprint(fields, "sync-hash")
	require.NoError(t, err)
	return Desired{Key: key, Fields: fields, Hash: hash}
}

func TestBuildPlan_DecisionTable(t *testing.T) {
	a := desired(t, "A", map[string]any{"name": "Alpha"})
	b := desired(t, "B", map[string]any{"name": "Beta"})

	index := IndexTargets([]Existing{
		{ID: "wf-a", Key: "A", Hash: "stale"},
		{ID: "wf-c", Key: "C", Hash: "whatever"},
	})

	plan := BuildPlan([]Desired{a, b}, keySet("A", "B"), index)

	require.Len(t, plan.Actions, 3)
	assert.Equal(t, ActionUpdate, plan.Actions[0].Type)
	assert.Equal(t, "A", plan.Actions[0].Key)
	assert.Equal(t, "wf-a", plan.Actions[0].TargetID)
	assert.Equal(t, a.Hash, plan.Actions[0].Desired.Hash)
	assert.Equal(t, ActionCreate, plan.Actions[1].Type)
	assert.Equal(t, "B", plan.Actions[1].Key)
	assert.Equal(t, ActionDelete, plan.Actions[2].Type)
	assert.Equal(t, "C", plan.Actions[2].Key)
	assert.Equal(t, "wf-c", plan.Actions[2].TargetID)

	assert.Equal(t, PlanSummary{Creates: 1, Updates: 1, Deletes: 1}, plan.Summary)
}

func TestBuildPlan_SkipOnMatchingHash(t *testing.T) {
	a := desired(t, "A", map[string]any{"name": "Alpha"})
	index := IndexTargets([]Existing{{ID: "wf-a", Key: "A", Hash: a.Hash}})

	plan := BuildPlan([]Desired{a}, keySet("A"), index)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, ActionSkip, plan.Actions[0].Type)
	assert.Equal(t, 1, plan.Summary.Skips)
}

func TestBuildPlan_EmptyStoredHashUpdates(t *testing.T) {
	a := desired(t, "A", map[string]any{})
	index := IndexTargets([]Existing{{ID: "wf-a", Key: "A"}})

	plan := BuildPlan([]Desired{a}, keySet("A"), index)
	assert.Equal(t, ActionUpdate, plan.Actions[0].Type)
}

func TestBuildPlan_DeletesAgainstWholeSourceSetNotBatch(t *testing.T) {
	// Only A is in this batch, but B is still in the filtered source and must survive.
	a := desired(t, "A", map[string]any{})
	index := IndexTargets([]Existing{
		{ID: "1", Key: "A", Hash: a.Hash},
		{ID: "2", Key: "B", Hash: "h"},
		{ID: "3", Key: "Z", Hash: "h"},
		{ID: "4", Key: "D", Hash: "h"},
	})

	plan := BuildPlan([]Desired{a}, keySet("A", "B"), index)

	var deleted []string
	for _, act := range plan.Actions {
		if act.Type == ActionDelete {
			deleted = append(deleted, act.Key)
		}
	}
	assert.Equal(t, []string{"D", "Z"}, deleted)
}

func TestBuildPlan_RoundTripIsAllSkip(t *testing.T) {
	a := desired(t, "A", map[string]any{"name": "Alpha", "galerie": []string{"x", "y"}})
	b := desired(t, "B", map[string]any{"name": "Beta"})
	batch := []Desired{a, b}
	sources := keySet("A", "B")

	first := BuildPlan(batch, sources, IndexTargets([]Existing{{ID: "c", Key: "C"}}))
	assert.Equal(t, 2, first.Summary.Creates)
	assert.Equal(t, 1, first.Summary.Deletes)

	// Post-apply state: every written record carries its fingerprint, C is gone.
	var after []Existing
	for _, act := range first.Actions {
		if act.Type == ActionCreate || act.Type == ActionUpdate {
			after = append(after, Existing{ID: "id-" + act.Key, Key: act.Key, Hash: act.Desired.Hash})
		}
	}

	// Re-mapping the same source yields identical records.
	a2 := desired(t, "A", map[string]any{"name": "Alpha", "galerie": []string{"x", "y"}})
	b2 := desired(t, "B", map[string]any{"name": "Beta"})
	second := BuildPlan([]Desired{a2, b2}, sources, IndexTargets(after))
	assert.Equal(t, PlanSummary{Skips: 2}, second.Summary)
}

func TestBuildPlan_RepeatedBatchKeyPlannedOnce(t *testing.T) {
	a := desired(t, "A", map[string]any{})
	plan := BuildPlan([]Desired{a, a}, keySet("A"), IndexTargets(nil))
	assert.Equal(t, 1, plan.Summary.Creates)
	assert.Len(t, plan.Actions, 1)
}

func TestIndexTargets_FirstMatchWins(t *testing.T) {
	index := IndexTargets([]Existing{
		{ID: "first", Key: "A", Hash: "h1"},
		{ID: "second", Key: "A", Hash: "h2"},
		{ID: "nokey"},
	})

	got, ok := index.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "first", got.ID)
	assert.Equal(t, 1, index.Len())
	require.Len(t, index.Duplicates(), 1)
	assert.Equal(t, "second", index.Duplicates()[0].ID)

	a := Desired{Key: "A", Hash: "h1"}
	plan := BuildPlan([]Desired{a}, keySet("A"), index)
	assert.Equal(t, 1, plan.Summary.Skips)
	assert.Equal(t, 1, plan.Summary.Duplicates)
	// The duplicate is reported, never deleted.
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, 0, plan.Summary.Deletes)
}

func TestFingerprint(t *testing.T) {
	f1 := map[string]any{"b": "2", "a": "1", "list": []string{"x", "y"}}
	f2 := map[string]any{"list": []string{"x", "y"}, "a": "1", "b": "2"}

	h1, err := Fingerprint(f1)
	require.NoError(t, err)
	h2, err := Fingerprint(f2)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 40)

	f3 := map[string]any{"a": "1", "b": "3", "list": []string{"x", "y"}}
	h3, err := Fingerprint(f3)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	// Order inside lists is significant.
	f4 := map[string]any{"a": "1", "b": "2", "list": []string{"y", "x"}}
	h4, err := Fingerprint(f4)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4)

	// Excluded fields do not influence the digest.
	f1["sync-hash"] = h1
	h5, err := Fingerprint(f1, "sync-hash")
	require.NoError(t, err)
	assert.Equal(t, h1, h5)
}

func TestFingerprint_KnownValue(t *testing.T) {
	// sha1 of {"a":"1"}
	h, err := Fingerprint(map[string]any{"a": "1"})
	require.NoError(t, err)
	assert.Equal(t, "1708d735828d488e7eba7cb61e27c30b8c2b5178", h)
}
