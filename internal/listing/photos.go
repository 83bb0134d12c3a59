package listing

import "slices"

// SetPrimary moves chosen to the front of photos, keeping the others in
// their relative order and dropping duplicates of chosen. When chosen is
// already first, photos is returned unchanged.
func SetPrimary(photos []string, chosen string) ([]string, error) {
	if !slices.Contains(photos, chosen) {
		return nil, ErrPhotoNotFound
	}
	if photos[0] == chosen {
		return slices.Clone(photos), nil
	}

	out := make([]string, 0, len(photos))
	out = append(out, chosen)
	for _, p := range photos {
		if p != chosen {
			out = append(out, p)
		}
	}
	return out, nil
}

// RemovePhoto returns photos without target.
func RemovePhoto(photos []string, target string) ([]string, error) {
	if !slices.Contains(photos, target) {
		return nil, ErrPhotoNotFound
	}

	out := make([]string, 0, len(photos)-1)
	for _, p := range photos {
		if p != target {
			out = append(out, p)
		}
	}
	return out, nil
}
