package appointment

import (
	"fmt"
	"hash/fnv"
)

// Fingerprint summarizes an appointment list so pollers can detect changes
// without diffing. Any add, remove, or status change yields a new value.
func Fingerprint(list []Appointment) string {
	h := fnv.New64a()
	for _, a := range list {
		fmt.Fprintf(h, "%d:%s;", a.ID, a.Status)
	}
	return fmt.Sprintf("%x", h.Sum64())
}
