package marker

import "math"

// DefaultVolumeBand is the default hysteresis guard band for derived
// volume updates. A new volume is only applied when it differs from the
// last applied one by at least this many units, so twitchy rotation
// readings do not flood the external audio sink.
const DefaultVolumeBand = 7

// VolumeFromRotationZ maps a Z-axis rotation in radians onto an audio
// volume in [0,100]. The full turn range [-pi,pi] maps linearly, so a
// marker rotated flat (rz=0) plays at half volume and turning it in either
// direction fades toward the extremes.
func VolumeFromRotationZ(rz float64) int {
	// Normalize into [-pi,pi) first; trackers occasionally report
	// accumulated angles beyond a single turn.
	rz = math.Mod(rz+math.Pi, 2*math.Pi)
	if rz < 0 {
		rz += 2 * math.Pi
	}
	rz -= math.Pi

	vol := int(math.Round((rz + math.Pi) / (2 * math.Pi) * 100))
	if vol < 0 {
		return 0
	}
	if vol > 100 {
		return 100
	}
	return vol
}
