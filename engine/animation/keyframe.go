package animation

import "github.com/spaghettifunk/marionette/engine/math"

// Keyframe is a single time-stamped sample of one channel.
type Keyframe[T math.Vec3 | math.Quaternion] struct {
	Key  T
	Time float32
}

type (
	PositionKeys = []Keyframe[math.Vec3]
	RotationKeys = []Keyframe[math.Quaternion]
	ScaleKeys    = []Keyframe[math.Vec3]
)

// sample scans a track for the pair of keys surrounding time and blends
// them with interp. An empty track yields empty, a track past its last
// key holds the last key.
func sample[T math.Vec3 | math.Quaternion](keys []Keyframe[T], time float32, empty T, interp func(a, b T, t float32) T) T {
	if len(keys) == 0 {
		return empty
	}
	for i := 1; i < len(keys); i++ {
		if time < keys[i].Time {
			k0, k1 := keys[i-1], keys[i]
			span := k1.Time - k0.Time
			if span <= 0 {
				return k0.Key
			}
			t := math.Clamp((time-k0.Time)/span, 0, 1)
			return interp(k0.Key, k1.Key, t)
		}
	}
	return keys[len(keys)-1].Key
}

func lerpVec3(a, b math.Vec3, t float32) math.Vec3 {
	return a.Lerp(b, t)
}

func slerpQuat(a, b math.Quaternion, t float32) math.Quaternion {
	return a.Slerp(b, t)
}
