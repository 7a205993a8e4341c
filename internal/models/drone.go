package models

import (
	"math"

	"github.com/san-kum/dynctl/internal/dynamo"
)

// Drone is a planar quadrotor with two rotors on an arm of ArmLength.
//
// State: x, y, theta, vx, vy, omega. Control: left and right rotor thrust
// in newtons. Rotors cannot pull, so negative thrust is clamped to zero.
// A single-input control is split evenly between the rotors.
type Drone struct {
	Mass, Inertia, ArmLength float64
	Gravity, DragCoeff       float64
	AngDrag                  float64
}

func NewDrone() *Drone {
	return &Drone{
		Mass:      DefaultMass,
		Inertia:   0.1,
		ArmLength: 0.25,
		Gravity:   DefaultGravity,
		DragCoeff: 0.1,
		AngDrag:   0.05,
	}
}

func (d *Drone) StateDim() int   { return 6 }
func (d *Drone) ControlDim() int { return 2 }

func (d *Drone) Derivative(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	theta, vx, vy, omega := x[2], x[3], x[4], x[5]
	left, right := d.rotors(u)

	thrust := left + right
	torque := (right - left) * d.ArmLength

	sin, cos := math.Sincos(theta)
	fx := -thrust*sin - d.DragCoeff*vx
	fy := thrust*cos - d.Mass*d.Gravity - d.DragCoeff*vy
	alpha := (torque - d.AngDrag*omega) / d.Inertia

	return dynamo.State{vx, vy, omega, fx / d.Mass, fy / d.Mass, alpha}
}

func (d *Drone) rotors(u dynamo.Control) (left, right float64) {
	switch {
	case len(u) >= 2:
		left, right = u[0], u[1]
	case len(u) == 1:
		left, right = u[0]/2, u[0]/2
	}
	return math.Max(0, left), math.Max(0, right)
}

// Trim returns the rotor thrusts that hold the drone level and still:
// each rotor carries half the weight.
func (d *Drone) Trim() dynamo.Control {
	half := d.Mass * d.Gravity / 2
	return dynamo.Control{half, half}
}

// Energy is kinetic plus rotational plus potential energy, with y as
// height above the reference.
func (d *Drone) Energy(x dynamo.State) float64 {
	y, vx, vy, omega := x[1], x[3], x[4], x[5]
	ke := 0.5 * d.Mass * (vx*vx + vy*vy)
	keRot := 0.5 * d.Inertia * omega * omega
	pe := d.Mass * d.Gravity * y
	return ke + keRot + pe
}
