package opset

import (
	"weave/action"
	"weave/objid"
	"weave/opid"
)

// FindByID returns the index of the row in rows with the given Obj and ID.
func FindByID(rows []Row, obj objid.ID, id opid.OpID) (int, bool) {
	for i, r := range rows {
		if r.Obj.Equal(obj) && r.ID.Equal(id) {
			return i, true
		}
	}
	return -1, false
}

// CounterValue resolves the materialized value of the counter rooted at
// rows[setIdx]: the set's own value plus every Increment op reachable by
// following Xref links transitively, since an inc's pred may be the set or
// another inc already on the chain (§3 invariant 6, §8 "Counter
// semantics").
func CounterValue(rows []Row, setIdx int) int64 {
	total := rows[setIdx].Value.I
	obj := rows[setIdx].Obj

	queue := append([]opid.OpID(nil), rows[setIdx].Xref...)
	seen := map[string]bool{}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		key := id.String()
		if seen[key] {
			continue
		}
		seen[key] = true

		idx, ok := FindByID(rows, obj, id)
		if !ok || rows[idx].Action != action.Increment {
			continue
		}
		total += rows[idx].Value.I
		queue = append(queue, rows[idx].Xref...)
	}
	return total
}

// IsLiveCounter reports whether rows[idx] is a counter whose every
// successor is itself an Increment op — i.e. still surfaced as a running
// counter rather than overwritten by a competing, non-increment write.
func IsLiveCounter(rows []Row, idx int) bool {
	row := rows[idx]
	if !row.Value.IsCounter() {
		return false
	}
	for _, succ := range row.Xref {
		sidx, ok := FindByID(rows, row.Obj, succ)
		if !ok || rows[sidx].Action != action.Increment {
			return false
		}
	}
	return true
}
