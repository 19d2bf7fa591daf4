package safety

import "bytes"

var imageMagics = [][]byte{
	{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	{0xff, 0xd8, 0xff},       // jpeg
	{'R', 'I', 'F', 'F'},     // webp container
	{'I', 'I', '*', 0x00},    // tiff, little endian
	{'M', 'M', 0x00, '*'},    // tiff, big endian
}

func looksLikeImage(data []byte) bool {
	for _, magic := range imageMagics {
		if bytes.HasPrefix(data, magic) {
			return true
		}
	}
	return false
}

// CheckImage classifies a generated payload before persistence. There is no
// image classifier in play; these are payload sanity rules. An empty payload
// is rejected at every level, an unrecognized format at moderate and strict.
func (f *Filter) CheckImage(data []byte) Verdict {
	var triggered []string
	if len(data) == 0 {
		triggered = append(triggered, "img-empty")
	}
	if f.policy.Mode != ModePermissive && len(data) > 0 && !looksLikeImage(data) {
		triggered = append(triggered, "img-format")
	}
	if len(triggered) > 0 {
		return Verdict{Outcome: Reject, RuleIDs: triggered, Mode: f.policy.Mode}
	}
	return Verdict{Outcome: Accept, Mode: f.policy.Mode}
}
