package differ

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #region tree-differ
// TreeDiffer is the default Differ. It walks widget ids and attribute keys
// in sorted order and arrays in index order: the shared prefix is compared
// element by element, the tail is reported as KindArray records.
type TreeDiffer struct{}

// NewTreeDiffer returns the default structural differ.
func NewTreeDiffer() *TreeDiffer {
	return &TreeDiffer{}
}

// Diff returns the changes that turn lhs into rhs.
func (TreeDiffer) Diff(lhs, rhs widget.Snapshot) []ChangeRecord {
	var out []ChangeRecord

	for _, id := range unionKeys(lhs, rhs) {
		l, inL := lhs[id]
		r, inR := rhs[id]
		path := []string{id}

		switch {
		case inL && !inR:
			out = append(out, ChangeRecord{Kind: KindDeleted, Path: path, LHS: l.Clone()})
		case !inL && inR:
			out = append(out, ChangeRecord{Kind: KindNew, Path: path, RHS: r.Clone()})
		default:
			out = diffValue(out, path, l.Fields(), r.Fields())
		}
	}
	return out
}

// #endregion tree-differ

// #region walk
func diffValue(out []ChangeRecord, path []string, l, r any) []ChangeRecord {
	lm, lIsMap := l.(map[string]any)
	rm, rIsMap := r.(map[string]any)
	if lIsMap && rIsMap {
		return diffMap(out, path, lm, rm)
	}

	la, lIsArr := l.([]any)
	ra, rIsArr := r.([]any)
	if lIsArr && rIsArr {
		return diffArray(out, path, la, ra)
	}

	if !reflect.DeepEqual(l, r) {
		out = append(out, ChangeRecord{Kind: KindEdited, Path: clonePath(path), LHS: l, RHS: r})
	}
	return out
}

func diffMap(out []ChangeRecord, path []string, l, r map[string]any) []ChangeRecord {
	for _, k := range unionKeys(l, r) {
		lv, inL := l[k]
		rv, inR := r[k]
		child := appendPath(path, k)

		switch {
		case inL && !inR:
			out = append(out, ChangeRecord{Kind: KindDeleted, Path: child, LHS: lv})
		case !inL && inR:
			out = append(out, ChangeRecord{Kind: KindNew, Path: child, RHS: rv})
		default:
			out = diffValue(out, child, lv, rv)
		}
	}
	return out
}

func diffArray(out []ChangeRecord, path []string, l, r []any) []ChangeRecord {
	shared := len(l)
	if len(r) < shared {
		shared = len(r)
	}
	for i := 0; i < shared; i++ {
		out = diffValue(out, appendPath(path, strconv.Itoa(i)), l[i], r[i])
	}
	for i := shared; i < len(l); i++ {
		out = append(out, ChangeRecord{
			Kind:  KindArray,
			Path:  clonePath(path),
			Index: i,
			Item:  &ChangeRecord{Kind: KindDeleted, LHS: l[i]},
		})
	}
	for i := shared; i < len(r); i++ {
		out = append(out, ChangeRecord{
			Kind:  KindArray,
			Path:  clonePath(path),
			Index: i,
			Item:  &ChangeRecord{Kind: KindNew, RHS: r[i]},
		})
	}
	return out
}

// #endregion walk

// #region helpers
func unionKeys[V any](l, r map[string]V) []string {
	seen := make(map[string]struct{}, len(l)+len(r))
	keys := make([]string, 0, len(l)+len(r))
	for k := range l {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range r {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}

func clonePath(path []string) []string {
	return append([]string(nil), path...)
}

// #endregion helpers
