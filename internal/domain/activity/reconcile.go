package activity

// Reconcile merges the bundled default activities with remotely stored ones
// into the authoritative list shown to visitors.
//
// Defaults keep their original positions whether overwritten or not; remote
// activities with no matching id are appended after all defaults in fetch
// order. A remote entry overwrites every field of its default slot except
// Title and Description, which fall back to the default's values when the
// remote's are empty. Remote image locators are filtered before merging.
// Duplicate remote ids collapse onto the same slot, last occurrence wins.
//
// PRE: defaults is the fixed bundled list; remote is the fetched list (may be nil)
// POST: result length = len(defaults) + distinct appended remote ids
func Reconcile(defaults []Activity, remote []Activity) []Activity {
	result := make([]Activity, len(defaults))
	copy(result, defaults)

	for _, r := range remote {
		r.Images = FilterImages(r.Images)
		if i := indexByID(result, r.ID); i >= 0 {
			merged := r
			if merged.Title == "" {
				merged.Title = result[i].Title
			}
			if merged.Description == "" {
				merged.Description = result[i].Description
			}
			result[i] = merged
		} else {
			result = append(result, r)
		}
	}
	return result
}

func indexByID(list []Activity, id int64) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
