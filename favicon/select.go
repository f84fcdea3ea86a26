package favicon

// Qualify filters candidates down to the usable ones, preserving document
// order. The returned slice is what a session snapshots for later restore.
func Qualify(candidates []Candidate) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if c.Qualifies() {
			out = append(out, c)
		}
	}
	return out
}

// SelectBest picks the single best icon among the candidates, or nil when
// none qualifies. Single pass, in document order:
//
//   - sizes "any" wins immediately: a scalable icon beats every fixed size
//   - otherwise the strictly largest leading integer of the sizes token wins;
//     on a tie the earlier candidate is kept
//   - a candidate without a parseable size is accepted only while no best
//     exists yet, and never raises the size bar
//
// Returning nil is the "feature unavailable" signal, not an error.
func SelectBest(candidates []Candidate) *Candidate {
	var best *Candidate
	bestSize := 0

	for i := range candidates {
		c := &candidates[i]
		if !c.Qualifies() {
			continue
		}
		if c.Sizes == SizeAny {
			return c
		}
		size, ok := ParseSize(c.Sizes)
		if !ok {
			if best == nil {
				best = c
			}
			continue
		}
		if size > bestSize {
			best = c
			bestSize = size
		}
	}
	return best
}
