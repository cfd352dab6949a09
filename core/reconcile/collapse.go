package reconcile

import "strings"

// CollapseMultiPart removes the extra parts of multi-part media.
//
// Items are grouped by exact name, then by the directory of their file path.
// Every sub-group with more than one item keeps only its first item.
// Items without a path are never collapsed. Survivors keep their input order. The collapsed groups are returned
// in first-seen order for reporting.
func CollapseMultiPart[T any](items []T, name func(T) string, path func(T) string) ([]T, [][]T) {
	byName := make(map[string][]int)
	var nameOrder []string
	for i, item := range items {
		n := name(item)
		if _, ok := byName[n]; !ok {
			nameOrder = append(nameOrder, n)
		}
		byName[n] = append(byName[n], i)
	}

	drop := make(map[int]struct{})
	var groups [][]T

	for _, n := range nameOrder {
		indices := byName[n]
		if len(indices) < 2 {
			continue
		}

		byDir := make(map[string][]int)
		var dirOrder []string
		for _, i := range indices {
			p := path(items[i])
			if p == "" {
				continue
			}
			d := parentDir(p)
			if _, ok := byDir[d]; !ok {
				dirOrder = append(dirOrder, d)
			}
			byDir[d] = append(byDir[d], i)
		}

		for _, d := range dirOrder {
			part := byDir[d]
			if len(part) < 2 {
				continue
			}
			group := make([]T, 0, len(part))
			for k, i := range part {
				group = append(group, items[i])
				if k > 0 {
					drop[i] = struct{}{}
				}
			}
			groups = append(groups, group)
		}
	}

	kept := make([]T, 0, len(items)-len(drop))
	for i, item := range items {
		if _, ok := drop[i]; ok {
			continue
		}
		kept = append(kept, item)
	}

	return kept, groups
}

// parentDir strips the last path segment. Both '/' and '\' separate segments.
func parentDir(p string) string {
	segments := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(segments) == 0 {
		return ""
	}
	dir := strings.Join(segments[:len(segments)-1], "/")
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		dir = "/" + dir
	}
	return dir
}
