package crawler

// DedupIndex is the set of links already known during one run. It is built
// from the persisted store when a run starts and is passed explicitly to each
// term. It is not safe for concurrent use; runs are sequential.
type DedupIndex struct {
	links map[string]struct{}
}

// NewDedupIndex seeds an index from previously persisted records.
func NewDedupIndex(records []Record) *DedupIndex {
	idx := &DedupIndex{links: make(map[string]struct{}, len(records))}
	for _, r := range records {
		idx.Add(r.Link)
	}
	return idx
}

// Contains reports whether link has been seen.
func (d *DedupIndex) Contains(link string) bool {
	_, ok := d.links[link]
	return ok
}

// Add records link and returns true if it was new.
func (d *DedupIndex) Add(link string) bool {
	if link == "" {
		return false
	}
	if _, ok := d.links[link]; ok {
		return false
	}
	d.links[link] = struct{}{}
	return true
}

// Len returns the number of known links.
func (d *DedupIndex) Len() int {
	return len(d.links)
}

// Filter returns the valid candidates whose links are unknown, preserving
// order. Repeats within candidates are dropped after their first occurrence.
// The index itself is not modified.
func (d *DedupIndex) Filter(candidates []Record) []Record {
	out := make([]Record, 0, len(candidates))
	batch := make(map[string]struct{}, len(candidates))
	for _, r := range candidates {
		if !r.Valid() || d.Contains(r.Link) {
			continue
		}
		if _, dup := batch[r.Link]; dup {
			continue
		}
		batch[r.Link] = struct{}{}
		out = append(out, r)
	}
	return out
}
