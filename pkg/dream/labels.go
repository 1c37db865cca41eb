package dream

import "strings"

// AddLabel appends label when it is non-empty and not already present.
// Matching is exact and case-sensitive. It reports whether the label was
// added.
func (d *Dream) AddLabel(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	for _, l := range d.CustomLabels {
		if l == label {
			return false
		}
	}
	d.CustomLabels = append(d.CustomLabels, label)
	return true
}

// RemoveLabel drops label if present.
func (d *Dream) RemoveLabel(label string) bool {
	for i, l := range d.CustomLabels {
		if l == label {
			d.CustomLabels = append(d.CustomLabels[:i], d.CustomLabels[i+1:]...)
			return true
		}
	}
	return false
}

// NormalizeLabels trims, drops empties and removes duplicates while keeping
// first-seen order.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
