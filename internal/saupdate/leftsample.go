package saupdate

import "github.com/marco-oliva/rimerge/internal/rindex"

// ComputeLeftPair returns the (SA[ra_j-1], SA[ra_j]) pair needed at an
// interruption point, either by propagating the previous pair when the
// walk stays inside the same L-run, or by locating the nearest real
// samples straddling ra_i from scratch. Grounded on
// SAUpdatesRLE::update_left; per spec.md §4.4 step 4. The caller is
// expected to try ThreadMaps.CachedLeftPair first and only fall back
// to this function on a cache miss, matching update_left's
// find(ra_j)/find(ra_j-1) short-circuit.
//
// prevSamples is the caller's running (sa_prev_left, sa_prev_right)
// pair; i is the current position in R (used to read R's current
// symbol).
func ComputeLeftPair(left, right *rindex.RIndex, raI, raJ uint64, prevSamples [2]uint64, i uint64) [2]uint64 {
	rc := right.At(i)
	n := left.Size()

	if raI > 0 && raI < n && left.At(raI-1) == left.At(raI) && rc == left.At(raI) {
		return [2]uint64{prevSamples[0] - 1, prevSamples[1] - 1}
	}

	minRaI := raI
	if minRaI > n {
		minRaI = n
	}

	var p1 uint64
	if left.Rank(minRaI, rc) > 0 {
		rank := left.Rank(minRaI, rc)
		p1, _ = left.Select(rank-1, rc)
	} else {
		var previous byte
		var rank uint64
		for {
			previous = left.Alphabet.Previous(rc)
			rank = left.Rank(n, previous)
			if rank != 0 {
				break
			}
		}
		p1, _ = left.Select(rank-1, previous)
	}

	var p2 uint64
	total := left.Rank(n, rc)
	before := left.Rank(minRaI, rc)
	if total-before > 0 {
		p2, _ = left.Select(before, rc)
	} else {
		var following byte
		var rank uint64
		for {
			following = left.Alphabet.Following(rc)
			rank = left.Rank(n, following)
			if rank != 0 {
				break
			}
		}
		p2, _ = left.Select(0, following)
	}

	v1 := left.Samples.Get(p1)
	v2 := left.Samples.Get(p2)
	return [2]uint64{(v1 - 1) % n, (v2 - 1) % n}
}
