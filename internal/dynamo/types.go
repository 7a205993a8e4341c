package dynamo

import "math"

// Scalar is the scalar field a state space is defined over.
type Scalar interface {
	~float32 | ~float64
}

// Time is the time axis a controller is evaluated on. Continuous-time
// controllers use [ContinuousTime], discrete-time controllers use
// [DiscreteTime] step indices.
type Time interface {
	~float64 | ~int
}

// ContinuousTime is a point on a continuous time axis, in seconds.
type ContinuousTime float64

// DiscreteTime is a sample index on a discrete time axis.
type DiscreteTime int

// Manifold is a state-space point over the scalar field S. Controllers only
// read manifold points; they never mutate them.
//
// Scalar returns the zero value of S. It ties every implementation to one
// field, so a float32 point does not satisfy Manifold[float64].
type Manifold[S Scalar] interface {
	Dim() int
	Scalar() S
}

// Euclidean is a manifold whose points are plain coordinate vectors.
type Euclidean[S Scalar] interface {
	Manifold[S]
	Coords() []S
}

// Vector is a fixed-length sequence of scalars. It serves as control
// vector and as the point type of Euclidean state spaces.
type Vector[S Scalar] []S

// NewVector returns a zeroed vector of length n.
func NewVector[S Scalar](n int) Vector[S] {
	return make(Vector[S], n)
}

func (v Vector[S]) Dim() int { return len(v) }

func (v Vector[S]) Scalar() S { return 0 }

func (v Vector[S]) Coords() []S { return v }

func (v Vector[S]) Clone() Vector[S] {
	c := make(Vector[S], len(v))
	copy(c, v)
	return c
}

// Equal reports whether v and o have the same length and entries.
func (v Vector[S]) Equal(o Vector[S]) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

func (v Vector[S]) IsValid() bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (v Vector[S]) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func (v Vector[S]) Add(other Vector[S]) Vector[S] {
	result := make(Vector[S], len(v))
	for i := range v {
		if i < len(other) {
			result[i] = v[i] + other[i]
		} else {
			result[i] = v[i]
		}
	}
	return result
}

func (v Vector[S]) Sub(other Vector[S]) Vector[S] {
	result := make(Vector[S], len(v))
	for i := range v {
		if i < len(other) {
			result[i] = v[i] - other[i]
		} else {
			result[i] = v[i]
		}
	}
	return result
}

func (v Vector[S]) Scale(factor S) Vector[S] {
	result := make(Vector[S], len(v))
	for i := range v {
		result[i] = v[i] * factor
	}
	return result
}

// State is the Euclidean double-precision state used by the simulator.
type State = Vector[float64]

// Control is a double-precision control vector.
type Control = Vector[float64]

// Configurable is implemented by controllers that support live tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
