package process

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/sosim/cpu"
	"github.com/ezrec/sosim/memory"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	pcb := New(3, "factorial", memory.PageTable{4, 5}, 11)
	assert.Equal(3, pcb.Pid)
	assert.Equal("factorial", pcb.Name)
	assert.Equal(STATE_NEW, pcb.State)
	assert.Equal(memory.PageTable{4, 5}, pcb.PageTable)
	assert.Equal(11, pcb.Length)
	assert.Equal(RESPONSE_UNSET, pcb.Response)
	assert.False(pcb.Dispatched())
	assert.Equal(cpu.Context{}, pcb.Context)
}

func TestStateString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("NEW", STATE_NEW.String())
	assert.Equal("TERMINATED", STATE_TERMINATED.String())
	assert.Equal("State(9)", State(9).String())
}

func TestTransitions(t *testing.T) {
	states := []State{STATE_NEW, STATE_READY, STATE_RUNNING, STATE_WAITING, STATE_TERMINATED}

	legal := map[[2]State]bool{
		{STATE_NEW, STATE_READY}:          true,
		{STATE_NEW, STATE_TERMINATED}:     true,
		{STATE_READY, STATE_RUNNING}:      true,
		{STATE_READY, STATE_TERMINATED}:   true,
		{STATE_RUNNING, STATE_READY}:      true,
		{STATE_RUNNING, STATE_WAITING}:    true,
		{STATE_RUNNING, STATE_TERMINATED}: true,
		{STATE_WAITING, STATE_READY}:      true,
		{STATE_WAITING, STATE_TERMINATED}: true,
	}

	for _, from := range states {
		for _, to := range states {
			t.Run(from.String()+"-"+to.String(), func(t *testing.T) {
				assert := assert.New(t)

				pcb := &Pcb{Pid: 1, State: from}
				err := pcb.Transition(to)
				if legal[[2]State{from, to}] {
					assert.NoError(err)
					assert.Equal(to, pcb.State)
				} else {
					assert.ErrorIs(err, ErrTransition)
					assert.Equal(from, pcb.State)
					var change *ErrStateChange
					assert.True(errors.As(err, &change))
					assert.Equal(from, change.From)
					assert.Equal(to, change.To)
				}
			})
		}
	}
}

func TestLifecycle(t *testing.T) {
	assert := assert.New(t)

	pcb := New(1, "minimal", nil, 1)

	assert.ErrorIs(pcb.Dispatch(), ErrTransition)
	assert.NoError(pcb.Admit())
	assert.ErrorIs(pcb.Admit(), ErrTransition)

	pcb.WaitCycles = 4
	assert.NoError(pcb.Dispatch())
	assert.Equal(4, pcb.Response)
	assert.True(pcb.Dispatched())

	assert.NoError(pcb.Preempt())
	assert.ErrorIs(pcb.Preempt(), ErrTransition)

	pcb.WaitCycles = 9
	assert.NoError(pcb.Dispatch())
	assert.Equal(4, pcb.Response)

	assert.NoError(pcb.Block())
	assert.ErrorIs(pcb.Dispatch(), ErrTransition)
	assert.NoError(pcb.Wake())
	assert.ErrorIs(pcb.Wake(), ErrTransition)

	assert.NoError(pcb.Terminate())
	assert.ErrorIs(pcb.Terminate(), ErrTransition)
	assert.ErrorIs(pcb.Admit(), ErrTransition)

	pcb.CpuCycles = 3
	assert.Equal(12, pcb.Turnaround())
}
