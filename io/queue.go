package io

import (
	"fmt"
	"iter"
	"maps"
)

// Queue is a bounded FIFO of integers. Reads consume Input in order;
// writes are appended to Output.
type Queue struct {
	Capacity int // Maximum number of buffered outputs, or zero for no limit.

	Input  []int
	Output []int

	readIndex int
}

var _ Device = (*Queue)(nil)

// Defines returns an iter of defines for the queue.
func (q *Queue) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"QUEUE_CAPACITY": fmt.Sprintf("%d", q.Capacity),
	})
}

// Rewind restarts the input, and empties the output.
func (q *Queue) Rewind() {
	q.readIndex = 0
	q.Output = nil
}

// ReadInt returns the next input value.
func (q *Queue) ReadInt() (value int, err error) {
	if q.readIndex >= len(q.Input) {
		err = ErrInputEnd
		return
	}

	value = q.Input[q.readIndex]
	q.readIndex++

	return
}

// WriteInt appends a value to the output.
// Returns ErrDeviceFull if the queue has reached capacity.
func (q *Queue) WriteInt(value int) (err error) {
	if q.Capacity > 0 && len(q.Output) >= q.Capacity {
		err = ErrDeviceFull
		return
	}

	q.Output = append(q.Output, value)

	return
}
