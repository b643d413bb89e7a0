package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_ReadInt(t *testing.T) {
	assert := assert.New(t)

	con := &Console{Input: strings.NewReader("12 -3\n\t7\nfoo")}

	for _, expected := range []int{12, -3, 7} {
		value, err := con.ReadInt()
		assert.NoError(err)
		assert.Equal(expected, value)
	}

	_, err := con.ReadInt()
	assert.ErrorIs(err, ErrInputSyntax)

	_, err = con.ReadInt()
	assert.ErrorIs(err, ErrInputEnd)
}

func TestConsole_Prompt(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	con := &Console{Input: strings.NewReader("5"), Output: out, Prompt: "? "}

	value, err := con.ReadInt()
	assert.NoError(err)
	assert.Equal(5, value)
	assert.NoError(con.WriteInt(120))
	assert.Equal("? 120\n", out.String())
}

func TestConsole_SwapInput(t *testing.T) {
	assert := assert.New(t)

	con := &Console{Input: strings.NewReader("1 2")}
	value, _ := con.ReadInt()
	assert.Equal(1, value)

	con.Input = strings.NewReader("9")
	value, err := con.ReadInt()
	assert.NoError(err)
	assert.Equal(9, value)

	con.Rewind()
	_, err = con.ReadInt()
	assert.ErrorIs(err, ErrInputEnd)
}

func TestConsole_Missing(t *testing.T) {
	assert := assert.New(t)

	con := &Console{}
	_, err := con.ReadInt()
	assert.ErrorIs(err, ErrNoInput)
	assert.ErrorIs(con.WriteInt(1), ErrNoOutput)
}

func TestQueue(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{Capacity: 2, Input: []int{4, 8}}

	defines := map[string]string{}
	for k, v := range q.Defines() {
		defines[k] = v
	}
	assert.Equal("2", defines["QUEUE_CAPACITY"])

	value, err := q.ReadInt()
	assert.NoError(err)
	assert.Equal(4, value)
	value, err = q.ReadInt()
	assert.NoError(err)
	assert.Equal(8, value)
	_, err = q.ReadInt()
	assert.ErrorIs(err, ErrInputEnd)

	assert.NoError(q.WriteInt(1))
	assert.NoError(q.WriteInt(2))
	assert.ErrorIs(q.WriteInt(3), ErrDeviceFull)
	assert.Equal([]int{1, 2}, q.Output)

	q.Rewind()
	assert.Nil(q.Output)
	value, err = q.ReadInt()
	assert.NoError(err)
	assert.Equal(4, value)
}
