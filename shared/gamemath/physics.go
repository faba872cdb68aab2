package gamemath

import "math"

// arcEpsilon absorbs the rounding of a phase accumulated from many dt steps.
const arcEpsilon = 1e-9

// StepToward adds accel to speed in the direction of dir (-1, 0 or 1) and
// clamps the result to [-max, max]. dir 0 stops immediately.
func StepToward(speed, accel, max, dir int) int {
	if dir == 0 {
		return 0
	}
	return ClampSpeed(speed+dir*accel, max)
}

// ClampSpeed clamps a value to [-max, max].
func ClampSpeed(speed, max int) int {
	if speed > max {
		return max
	}
	if speed < -max {
		return -max
	}
	return speed
}

// Clamp clamps v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// JumpHeight returns how far above the floor a jump is at phase.
func JumpHeight(phase, strength float64) int {
	return int(math.Sin(phase) * strength)
}

// ArcComplete reports whether a jump phase has reached the end of the arc.
func ArcComplete(phase float64) bool {
	return phase >= math.Pi-arcEpsilon
}

// Scale multiplies an integer velocity and truncates toward zero.
func Scale(v int, f float64) int {
	return int(float64(v) * f)
}
