package pipeline

import "sort"

// ThreadBuffer accumulates one producer's RA values between flushes.
// When full it sorts, merges adjacent duplicates into (value, count)
// runs, and routes each run to the merge slot owning its value's job,
// per spec.md §4.5.
type ThreadBuffer struct {
	p        *Pipeline
	values   []uint64
	capacity int
}

func newThreadBuffer(p *Pipeline, byteCapacity int) *ThreadBuffer {
	capacity := byteCapacity / 8
	if capacity < 1 {
		capacity = 1
	}
	return &ThreadBuffer{
		p:        p,
		values:   make([]uint64, 0, capacity),
		capacity: capacity,
	}
}

// Add appends value, flushing the buffer first if it is already at
// capacity.
func (b *ThreadBuffer) Add(value uint64) {
	if len(b.values) >= b.capacity {
		b.Flush()
	}
	b.values = append(b.values, value)
}

// Flush sorts the buffer, merges equal values into runs, and sends
// each run to its job's merge slot, blocking if that slot's channel
// is full (the thread-buffer-size backpressure of spec.md §4.5).
// Resets the buffer for reuse.
func (b *ThreadBuffer) Flush() {
	if len(b.values) == 0 {
		return
	}
	sort.Slice(b.values, func(i, j int) bool { return b.values[i] < b.values[j] })

	i := 0
	for i < len(b.values) {
		v := b.values[i]
		j := i + 1
		for j < len(b.values) && b.values[j] == v {
			j++
		}
		slot := b.p.slotFor(v)
		slot.send(run{value: v, count: uint64(j - i)})
		i = j
	}
	b.values = b.values[:0]
}
