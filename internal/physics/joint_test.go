package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/jointsim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJoint_RejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name             string
		inertia, damping float64
	}{
		{"zero inertia", 0, 0.1},
		{"negative inertia", -0.01, 0.1},
		{"NaN inertia", math.NaN(), 0.1},
		{"negative damping", 0.01, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := NewJoint(tt.inertia, tt.damping)
			assert.Nil(t, j)
			assert.True(t, errors.Is(err, dynamo.ErrInvalidParameter), "got %v", err)
		})
	}
}

func TestJoint_StepRejectsNonPositiveDt(t *testing.T) {
	j, err := NewJoint(0.01, 0.1)
	require.NoError(t, err)

	for _, dt := range []float64{0, -0.001} {
		_, err := j.Step(1, dt)
		assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
	}
	assert.Equal(t, JointState{}, j.State(), "a rejected step must not move the joint")
}

// Zero torque from rest keeps the joint at rest for any step size.
func TestJoint_ZeroInputStability(t *testing.T) {
	for _, dt := range []float64{1e-4, 0.001, 0.1, 1} {
		j, err := NewJoint(0.01, 0.1)
		require.NoError(t, err)

		for i := 0; i < 1000; i++ {
			s, err := j.Step(0, dt)
			require.NoError(t, err)
			require.Equal(t, JointState{}, s)
		}
	}
}

// The angle update uses the velocity produced in the same step.
func TestJoint_SemiImplicitOrdering(t *testing.T) {
	j, err := NewJoint(0.01, 0.1)
	require.NoError(t, err)

	s, err := j.Step(1, 0.01)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.AngularVelocity, 1e-12)
	assert.InDelta(t, 0.01, s.Angle, 1e-12)

	s, err = j.Step(1, 0.01)
	require.NoError(t, err)
	assert.InDelta(t, 1.9, s.AngularVelocity, 1e-12)
	assert.InDelta(t, 0.029, s.Angle, 1e-12)
	assert.Equal(t, s, j.State())
}

func TestJoint_UndampedVelocityGrowsWithoutBound(t *testing.T) {
	j, err := NewJoint(0.01, 0)
	require.NoError(t, err)

	prev := 0.0
	for i := 0; i < 5000; i++ {
		s, err := j.Step(0.5, 0.001)
		require.NoError(t, err)
		require.Greater(t, s.AngularVelocity, prev)
		prev = s.AngularVelocity
	}
	assert.InDelta(t, 0.5/0.01*5.0, prev, 1e-6)
}

func TestJoint_DampedVelocityApproachesTerminal(t *testing.T) {
	const torque, damping = 1.0, 0.1
	j, err := NewJoint(0.01, damping)
	require.NoError(t, err)

	prev := 0.0
	for i := 0; i < 2000; i++ {
		s, err := j.Step(torque, 0.001)
		require.NoError(t, err)
		require.GreaterOrEqual(t, s.AngularVelocity, prev-1e-12)
		require.LessOrEqual(t, s.AngularVelocity, torque/damping+1e-12)
		prev = s.AngularVelocity
	}
	assert.InDelta(t, torque/damping, prev, 1e-6)
}

func TestJoint_ResetReplaysIdentically(t *testing.T) {
	j, err := NewJoint(0.02, 0.3)
	require.NoError(t, err)

	torques := []float64{1, -2, 0.5, 3, 0, -1}
	run := func() []JointState {
		j.Reset(0.2, -0.4)
		out := make([]JointState, 0, len(torques))
		for _, u := range torques {
			s, err := j.Step(u, 0.005)
			require.NoError(t, err)
			out = append(out, s)
		}
		return out
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

func TestJoint_Energy(t *testing.T) {
	j, err := NewJoint(0.5, 0)
	require.NoError(t, err)

	j.Reset(1.0, 2.0)
	assert.InDelta(t, 1.0, j.Energy(), 1e-12)
	assert.Equal(t, map[string]float64{"inertia": 0.5, "damping": 0}, j.GetParams())
}
