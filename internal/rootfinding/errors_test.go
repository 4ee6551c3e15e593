package rootfinding

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "kind only",
			err:  &Error{Kind: ErrSingularStep},
			want: "singular step",
		},
		{
			name: "kind and message",
			err:  NewError(ErrSingularStep, "derivative is 0"),
			want: "singular step: derivative is 0",
		},
		{
			name: "component and operation",
			err:  NewError(ErrSingularStep, "derivative is 0").WithComponent("newton").WithOperation("step"),
			want: "newton: step: singular step: derivative is 0",
		},
		{
			name: "wrapped cause",
			err:  &Error{Message: "evaluation failed", Err: fmt.Errorf("overflow")},
			want: "evaluation failed: overflow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNilError(t *testing.T) {
	var e *Error
	assert.Equal(t, "<nil>", e.Error())
	assert.Nil(t, e.Unwrap())
}

func TestInfeasibleCarriesBoundValues(t *testing.T) {
	err := fmt.Errorf("solve: %w", Infeasible("bisection", 10, 10))

	assert.True(t, errors.Is(err, ErrInfeasible))
	assert.False(t, errors.Is(err, ErrBracketViolation))

	e, ok := AsError(err)
	assert.True(t, ok)
	assert.Equal(t, 10.0, e.FLower)
	assert.Equal(t, 10.0, e.FUpper)
	assert.Equal(t, "bisection", e.Component)
	assert.Contains(t, err.Error(), "f(lower) = 10")
}

func TestKindOf(t *testing.T) {
	cause := errors.New("cause")
	e := &Error{Kind: ErrBracketViolation, Err: cause}

	assert.Equal(t, ErrBracketViolation, KindOf(e))
	assert.True(t, errors.Is(e, cause))
	assert.Nil(t, KindOf(cause))
	assert.Nil(t, KindOf(nil))

	_, ok := AsError(cause)
	assert.False(t, ok)
}
