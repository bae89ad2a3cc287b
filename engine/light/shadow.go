package light

// ShadowMapResolution is the default width and height in texels of the shadow
// pass frame buffer created by render paths with shadows enabled.
const ShadowMapResolution = 2048

// ShadowCasters returns the enabled lights eligible for the shadow pass, in input order.
//
// Parameters:
//   - lights: candidate lights (nil entries are skipped)
//
// Returns:
//   - []Light: the shadow-casting subset
func ShadowCasters(lights []Light) []Light {
	var out []Light
	for _, l := range lights {
		if l != nil && l.Enabled() && l.CastsShadows() {
			out = append(out, l)
		}
	}
	return out
}
