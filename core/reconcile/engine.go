package reconcile

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// Index holds existing target records by external key.
type Index struct {
	byKey      map[string]Existing
	duplicates []Existing
}

// IndexTargets indexes existing records by key. The first record for a key wins;
// later ones are kept as duplicates. Records without a key are ignored.
func IndexTargets(items []Existing) *Index {
	idx := &Index{byKey: make(map[string]Existing, len(items))}
	for _, item := range items {
		if item.Key == "" {
			continue
		}
		if _, ok := idx.byKey[item.Key]; ok {
			idx.duplicates = append(idx.duplicates, item)
			continue
		}
		idx.byKey[item.Key] = item
	}
	return idx
}

// Lookup returns the record stored under key.
func (i *Index) Lookup(key string) (Existing, bool) {
	e, ok := i.byKey[key]
	return e, ok
}

// Len returns the number of distinct keys.
func (i *Index) Len() int {
	return len(i.byKey)
}

// Duplicates returns records that lost the first-match rule.
func (i *Index) Duplicates() []Existing {
	return i.duplicates
}

// BuildPlan classifies the desired batch against the index and plans deletes for
// every indexed key absent from sourceKeys. Repeated keys in the batch are planned
// once. Duplicate target records are counted but never acted on.
func BuildPlan(batch []Desired, sourceKeys map[string]struct{}, index *Index) *Plan {
	plan := &Plan{}
	seen := make(map[string]struct{}, len(batch))

	for i := range batch {
		d := &batch[i]
		if _, dup := seen[d.Key]; dup {
			continue
		}
		seen[d.Key] = struct{}{}

		existing, ok := index.Lookup(d.Key)
		switch {
		case !ok:
			plan.Actions = append(plan.Actions, Action{Type: ActionCreate, Key: d.Key, Desired: d})
			plan.Summary.Creates++
		case existing.Hash != "" && existing.Hash == d.Hash:
			plan.Actions = append(plan.Actions, Action{Type: ActionSkip, Key: d.Key, TargetID: existing.ID})
			plan.Summary.Skips++
		default:
			plan.Actions = append(plan.Actions, Action{Type: ActionUpdate, Key: d.Key, TargetID: existing.ID, Desired: d})
			plan.Summary.Updates++
		}
	}

	var deletes []Action
	for key, existing := range index.byKey {
		if _, ok := sourceKeys[key]; ok {
			continue
		}
		deletes = append(deletes, Action{Type: ActionDelete, Key: key, TargetID: existing.ID, Reason: "not in source"})
	}
	sort.Slice(deletes, func(a, b int) bool { return deletes[a].Key < deletes[b].Key })
	plan.Actions = append(plan.Actions, deletes...)
	plan.Summary.Deletes = len(deletes)
	plan.Summary.Duplicates = len(index.duplicates)

	return plan
}

// Fingerprint returns the SHA-1 hex digest of the record serialized with sorted
// keys. Fields named in exclude are left out, so a stored fingerprint field does not
// feed back into itself.
func Fingerprint(fields map[string]any, exclude ...string) (string, error) {
	skip := make(map[string]struct{}, len(exclude))
	for _, k := range exclude {
		skip[k] = struct{}{}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := skip[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return "", err
		}
		vb, err := json.Marshal(fields[k])
		if err != nil {
			return "", fmt.Errorf("field %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')

	sum := sha1.Sum(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
