package interleave

import (
	"github.com/marco-oliva/rimerge/internal/rindex"
	"github.com/marco-oliva/rimerge/internal/sasamples"
	"github.com/marco-oliva/rimerge/internal/saupdate"
	"github.com/pkg/errors"
)

// samplesMerger is the per-job sample-emission state machine:
// LFL/LLI/LRI track the last-emitted symbol's origin and position, so
// Emit can decide whether the position it is about to write sits at a
// run boundary it needs a recorded interruption sample for. Grounded
// on SamplesMergerRLE::operator().
type samplesMerger struct {
	left, right *rindex.RIndex
	maps        *saupdate.Maps
	out         []byte

	lfl bool
	lli uint64
	lri uint64
}

func newSamplesMerger(left, right *rindex.RIndex, maps *saupdate.Maps) *samplesMerger {
	return &samplesMerger{left: left, right: right, maps: maps}
}

func (m *samplesMerger) setLLI(v uint64) { m.lli = v }
func (m *samplesMerger) setLRI(v uint64) { m.lri = v }
func (m *samplesMerger) setLFL(v bool)   { m.lfl = v }

func (m *samplesMerger) write(insertingIndex, value uint64) {
	m.out = sasamples.AppendRecord(m.out, insertingIndex, value)
}

// emit is invoked once per symbol the interleave loop writes to the
// merged BWT: index is the position in whichever of L/R the symbol
// came from (fromLeft selects which), insertingIndex is the symbol's
// position in the merged output, and currRA/prevRA/nextRA are the
// interleave loop's current rolling window over the RA stream.
func (m *samplesMerger) emit(index uint64, fromLeft bool, insertingIndex, currRA, prevRA, nextRA uint64) error {
	left, right := m.left, m.right

	if insertingIndex == 0 {
		if fromLeft {
			m.write(0, left.Samples.Get(index))
			m.lfl, m.lli = true, index
		} else {
			m.write(0, right.Samples.Get(index)+left.Size())
			m.lfl, m.lri = false, index
		}
		return nil
	}

	if fromLeft && index < left.Sequences() {
		m.write(insertingIndex, left.Samples.Get(index))
		m.lfl, m.lli = true, index
		return nil
	}
	if !fromLeft && index < right.Sequences() {
		m.write(insertingIndex, right.Samples.Get(index)+left.Size())
		m.lfl, m.lri = false, index
		return nil
	}
	if fromLeft && index == left.Size()-1 {
		m.write(insertingIndex, left.Samples.Get(index))
		m.lfl, m.lli = true, index
		return nil
	}
	if !fromLeft && index == right.Size()-1 {
		m.write(insertingIndex, right.Samples.Get(index)+left.Size())
		m.lfl, m.lri = false, index
		return nil
	}

	switch {
	case fromLeft && m.lfl:
		if err := m.emitLeftAfterLeft(index, currRA); err != nil {
			return err
		}
		m.lfl, m.lli = true, index
	case fromLeft && !m.lfl:
		if err := m.emitLeftAfterRight(index, currRA, prevRA); err != nil {
			return err
		}
		m.lfl, m.lli = true, index
	case !fromLeft && !m.lfl:
		if err := m.emitRightAfterRight(index, currRA, nextRA); err != nil {
			return err
		}
		m.lfl, m.lri = false, index
	default:
		if err := m.emitRightAfterLeft(index, currRA, nextRA); err != nil {
			return err
		}
		m.lfl, m.lri = false, index
	}
	return nil
}

func (m *samplesMerger) emitLeftAfterLeft(index, currRA uint64) error {
	left, right := m.left, m.right
	genre := left.Genre(index)
	switch {
	case genre&rindex.START != 0 || (genre&rindex.END != 0 && index != currRA-1):
		m.write(index, left.Samples.Get(index))
	case genre != rindex.NOT && index == currRA-1 && left.At(index) != right.At(m.lri+1):
		m.write(index, left.Samples.Get(index))
	case genre == rindex.NOT && index == currRA-1 && left.At(index) != right.At(m.lri+1):
		v, ok := m.maps.FindLeft(currRA - 1)
		if !ok {
			return errors.Errorf("interleave: sample missing in left map at key %d (position %d)", currRA-1, index)
		}
		m.write(index, v)
	}
	return nil
}

func (m *samplesMerger) emitLeftAfterRight(index, currRA, prevRA uint64) error {
	left, right := m.left, m.right
	genre := left.Genre(index)

	switch {
	case left.At(index) != right.At(m.lri):
		if v, ok := m.maps.FindLeft(prevRA); ok {
			m.write(index, v)
		} else if genre != rindex.NOT {
			m.write(index, left.Samples.Get(index))
		} else {
			return errors.Errorf("interleave: sample missing in left map at key %d (position %d)", prevRA, index)
		}
	case index == currRA-1 && left.At(index) != right.At(m.lri+1):
		if v, ok := m.maps.FindLeft(currRA - 1); ok {
			m.write(index, v)
		} else if genre != rindex.NOT {
			m.write(index, left.Samples.Get(index))
		} else {
			return errors.Errorf("interleave: sample missing in left map at key %d (position %d)", currRA-1, index)
		}
	case index != currRA-1 && genre&rindex.END != 0:
		m.write(index, left.Samples.Get(index))
	case index != currRA-1 && genre&rindex.START != 0 && left.At(index) != right.At(m.lri):
		m.write(index, left.Samples.Get(index))
	}
	return nil
}

func (m *samplesMerger) emitRightAfterRight(index, currRA, nextRA uint64) error {
	left, right := m.left, m.right
	genre := right.Genre(index)

	switch {
	case genre&rindex.START != 0 || (genre&rindex.END != 0 && currRA == nextRA):
		m.write(index, right.Samples.Get(index)+left.Size())
	case genre != rindex.NOT && currRA != nextRA && right.At(index) != left.At(m.lli+1):
		m.write(index, right.Samples.Get(index)+left.Size())
	case genre == rindex.NOT && currRA != nextRA && right.At(index) != left.At(m.lli+1):
		entry, ok := m.maps.FindRightMax(currRA)
		if !ok {
			return errors.Errorf("interleave: sample missing in right-max map at key %d (position %d)", currRA, index)
		}
		m.write(index, entry.Value+left.Size())
	}
	return nil
}

func (m *samplesMerger) emitRightAfterLeft(index, currRA, nextRA uint64) error {
	left, right := m.left, m.right
	genre := right.Genre(index)

	if genre != rindex.NOT {
		switch {
		case right.At(index) != left.At(m.lli):
			m.write(index, right.Samples.Get(index)+left.Size())
		case currRA != nextRA && right.At(index) != left.At(m.lli+1):
			m.write(index, right.Samples.Get(index)+left.Size())
		case currRA == nextRA && genre&rindex.END != 0:
			m.write(index, right.Samples.Get(index)+left.Size())
		}
		return nil
	}

	switch {
	case right.At(index) != left.At(m.lli):
		entry, ok := m.maps.FindRightMin(currRA)
		if !ok {
			return errors.Errorf("interleave: sample missing in right-min map at key %d (position %d)", currRA, index)
		}
		m.write(index, entry.Value+left.Size())
	case currRA != nextRA && right.At(index) != left.At(m.lli+1):
		entry, ok := m.maps.FindRightMax(currRA)
		if !ok {
			return errors.Errorf("interleave: sample missing in right-max map at key %d (position %d)", currRA, index)
		}
		m.write(index, entry.Value+left.Size())
	}
	return nil
}
