package activity

// StoredActivity is the storage form of an Activity. Older records carried a
// single `imageFile` locator instead of the `images` sequence; the upgrade is
// applied exactly once, at the store boundary, never at read sites.
type StoredActivity struct {
	Activity
	ImageFile string `json:"imageFile,omitempty"` // legacy single-locator field
}

// Upgrade converts a stored record to the current Activity shape.
// POST: Images is populated (legacy imageFile folded in) and filtered
func (s StoredActivity) Upgrade() Activity {
	a := s.Activity
	if len(a.Images) == 0 && s.ImageFile != "" {
		a.Images = []string{s.ImageFile}
	}
	a.Images = FilterImages(a.Images)
	return a
}
