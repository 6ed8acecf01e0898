package docx

import "sort"

// threadComments joins comment entries with their body ranges and assigns
// parents. Rules apply in precedence order and only fill gaps left by
// earlier ones:
//
//  1. an explicit w15:paraIdParent link in commentsExtended
//  2. a range starting while another comment's range is open
//  3. ranges sharing a start position: the earliest created is the parent
//  4. comments without a range: the latest created ranged comment before it
//
// An assignment that would close a cycle is skipped. Range starts without an
// end extend to docEnd. The input slice is not modified.
func threadComments(entries []CommentEntry, ext []commentExtended, events []rangeEvent, docEnd int) []CommentEntry {
	out := make([]CommentEntry, len(entries))
	copy(out, entries)

	byID := make(map[string]int, len(out))
	byPara := make(map[string]int)
	for i, e := range out {
		byID[e.ID] = i
		for _, p := range e.ParaIDs {
			byPara[p] = i
		}
	}

	// Range positions
	for _, ev := range events {
		i, ok := byID[ev.ID]
		if !ok {
			continue
		}
		if ev.Start {
			if out[i].RangeStart < 0 {
				out[i].RangeStart = ev.Pos
			}
		} else {
			out[i].RangeEnd = ev.Pos
		}
	}
	for i := range out {
		switch {
		case out[i].RangeStart < 0:
			out[i].RangeEnd = -1
		case out[i].RangeEnd < out[i].RangeStart:
			out[i].RangeEnd = docEnd
		}
	}

	t := threader{entries: out, byID: byID}

	// 1. Extended metadata
	for _, ex := range ext {
		child, ok := byPara[ex.ParaID]
		if !ok {
			continue
		}
		out[child].Done = out[child].Done || ex.Done
		if ex.ParentParaID == "" {
			continue
		}
		if parent, ok := byPara[ex.ParentParaID]; ok {
			t.assign(child, parent, ThreadExtended)
		}
	}

	// Start positions shared by more than one comment
	startCount := make(map[int]int)
	for _, e := range out {
		if e.HasRange() {
			startCount[e.RangeStart]++
		}
	}

	// 2. Nested ranges
	var open []int
	for _, ev := range events {
		i, ok := byID[ev.ID]
		if !ok {
			continue
		}
		if !ev.Start {
			open = removeInt(open, i)
			continue
		}
		if containsInt(open, i) {
			continue
		}
		if len(open) > 0 && startCount[out[i].RangeStart] == 1 {
			t.assign(i, open[len(open)-1], ThreadNested)
		}
		open = append(open, i)
	}

	// 3. Shared start positions
	groups := make(map[int][]int)
	for i, e := range out {
		if e.HasRange() && startCount[e.RangeStart] > 1 {
			groups[e.RangeStart] = append(groups[e.RangeStart], i)
		}
	}
	starts := make([]int, 0, len(groups))
	for s := range groups {
		starts = append(starts, s)
	}
	sort.Ints(starts)
	for _, s := range starts {
		members := groups[s]
		sort.SliceStable(members, func(a, b int) bool {
			return out[members[a]].CreatedAt.Before(out[members[b]].CreatedAt)
		})
		for _, m := range members[1:] {
			t.assign(m, members[0], ThreadSharedStart)
		}
	}

	// 4. Comments without a range
	for i, e := range out {
		if e.HasRange() {
			continue
		}
		best := -1
		for j, cand := range out {
			if j == i || !cand.HasRange() || !cand.CreatedAt.Before(e.CreatedAt) {
				continue
			}
			if best < 0 || out[best].CreatedAt.Before(cand.CreatedAt) {
				best = j
			}
		}
		if best >= 0 {
			t.assign(i, best, ThreadMissingRange)
		}
	}
	return out
}

type threader struct {
	entries []CommentEntry
	byID    map[string]int
}

// assign sets the parent of child unless it already has one or the link
// would create a cycle.
func (t threader) assign(child, parent int, src ThreadSource) {
	if child == parent || t.entries[child].ParentID != "" {
		return
	}
	if t.reaches(parent, child) {
		return
	}
	t.entries[child].ParentID = t.entries[parent].ID
	t.entries[child].ThreadSource = src
}

// reaches reports whether walking up from i arrives at target.
func (t threader) reaches(i, target int) bool {
	seen := make(map[int]bool)
	for i >= 0 && !seen[i] {
		if i == target {
			return true
		}
		seen[i] = true
		p := t.entries[i].ParentID
		if p == "" {
			return false
		}
		next, ok := t.byID[p]
		if !ok {
			return false
		}
		i = next
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func removeInt(list []int, v int) []int {
	out := list[:0:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
