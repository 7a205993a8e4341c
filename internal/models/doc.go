// Package models provides controlled dynamical systems for simulation.
//
// Each model implements [sim.Dynamics]:
//
//   - [Pendulum]: damped pendulum driven by a torque
//   - [SpringMass]: damped mass on a spring driven by a force
//   - [Drone]: planar quadrotor with two thrusters
//
// Models that also implement [sim.EnergyComputer] report energy drift.
package models
