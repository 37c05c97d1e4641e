package rindex

import (
	"github.com/marco-oliva/rimerge/internal/alphabet"
	"github.com/marco-oliva/rimerge/internal/sasamples"
	"github.com/pkg/errors"
)

// ValidationReport collects the three error classes RIndexRLE::check
// reports: positions that should carry a sample but don't, positions
// that carry one but shouldn't, and sample values at or above
// invalidThreshold (within 1000 of the 5-byte maximum).
type ValidationReport struct {
	Missing     []uint64
	Unnecessary []uint64
	Invalid     []uint64
}

// OK reports whether the index passed validation: no missing and no
// invalid samples (unnecessary samples are a looseness, not a
// correctness failure, matching RIndexRLE::check's return value).
func (r ValidationReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Invalid) == 0
}

// invalidThreshold mirrors check()'s "mask - 1000": sample values
// within 1000 of the maximum representable 5-byte unsigned value are
// treated as suspiciously close to an encoding overflow.
const invalidThreshold = (uint64(1) << (8 * sasamples.SampleBytes)) - 1 - 1000

// Validate walks every BWT position and checks the sample-presence
// invariant of spec.md §3 and §8: a position carries a sample iff its
// genre is not NOT (or it is a sequence head), grounded on
// RIndexRLE::check.
func Validate(idx *RIndex) ValidationReport {
	var report ValidationReport
	n := idx.Size()
	for i := uint64(0); i < n; i++ {
		v := idx.Samples.Get(i)
		if idx.Genre(i) != NOT || i < idx.sequences {
			if v == sasamples.InvalidValue {
				report.Missing = append(report.Missing, i)
			}
			if v >= invalidThreshold {
				report.Invalid = append(report.Invalid, i)
			}
		} else if v != sasamples.InvalidValue && i > idx.sequences {
			report.Unnecessary = append(report.Unnecessary, i)
		}
	}
	return report
}

// ValidateSAValues re-derives, for every sequence, the expected SA
// value at each position along its LF-walk from the known sequence
// head sample and checks it against any sample actually stored there,
// grounded on RIndexRLE::check_sa_values.
func ValidateSAValues(idx *RIndex) (int, error) {
	var mismatches int
	for seq := uint64(0); seq < idx.Sequences(); seq++ {
		pos := seq
		saValue := idx.Samples.Get(seq)
		if saValue == sasamples.InvalidValue {
			return mismatches, errors.Errorf("rindex: sequence %d has no head sample", seq)
		}
		for idx.At(pos) != alphabet.StringTerminator && idx.At(pos) != alphabet.DataTerminator {
			if idx.Genre(pos) != NOT {
				if v := idx.Samples.Get(pos); v != sasamples.InvalidValue && v != saValue {
					mismatches++
				}
			}
			pos = idx.LF(pos)
			saValue--
		}
	}
	return mismatches, nil
}
