package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStates(t *testing.T) {
	tests := []struct {
		name                  string
		res                   Result[int]
		found, absent, failed bool
	}{
		{"found", Found(7), true, false, false},
		{"absent", Absent[int](), false, true, false},
		{"failed", Failed[int](errors.New("boom")), false, false, true},
		{"zero", Result[int]{}, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.found, tt.res.IsFound(), "found")
			assert.Equal(t, tt.absent, tt.res.IsAbsent(), "absent")
			assert.Equal(t, tt.failed, tt.res.IsFailed(), "failed")
		})
	}
}

func TestFailedNilError(t *testing.T) {
	r := Failed[string](nil)
	assert.True(t, r.IsFailed())
	assert.Error(t, r.Err())
}

func TestMap(t *testing.T) {
	double := func(n int) int { return n * 2 }

	got := Map(Found(21), double)
	require.True(t, got.IsFound())
	assert.Equal(t, 42, got.Value())

	assert.True(t, Map(Absent[int](), double).IsAbsent())

	boom := errors.New("boom")
	assert.ErrorIs(t, Map(Failed[int](boom), double).Err(), boom)
}

func TestCallbacks(t *testing.T) {
	var sawErr error
	absentCalls := 0
	Failed[int](errors.New("boom")).
		OnError(func(err error) { sawErr = err }).
		OnAbsent(func() { absentCalls++ })
	assert.Error(t, sawErr)
	assert.Zero(t, absentCalls)

	sawErr = nil
	Absent[int]().
		OnError(func(err error) { sawErr = err }).
		OnAbsent(func() { absentCalls++ })
	assert.NoError(t, sawErr)
	assert.Equal(t, 1, absentCalls)
}

func TestUnwrap(t *testing.T) {
	assert.Equal(t, "v", Found("v").Unwrap())
	assert.Panics(t, func() { Absent[string]().Unwrap() })
	assert.Panics(t, func() { Failed[string](errors.New("x")).Unwrap() })
}
