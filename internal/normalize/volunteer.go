// Package normalize turns loosely shaped documents and spreadsheet rows into
// the canonical model types.
package normalize

import (
	"fmt"
	"math"
	"strings"

	"shaheen-admin/internal/model"
)

const (
	MultipleMasjids  = "multiple masjids"
	MultipleClusters = "multiple clusters"
	UnknownName      = "Unknown"
	DefaultRole      = "volunteer"
)

// Volunteer builds a profile from a raw Users document. Nested values are
// expected as plain maps and slices.
func Volunteer(id string, data map[string]any) model.Volunteer {
	return model.Volunteer{
		ID:      id,
		Name:    volunteerName(data),
		Email:   str(data["email"]),
		Phone:   firstString(data, "phone", "phoneNumber", "phone_number", ""),
		Role:    firstString(data, "role", DefaultRole),
		Masjid:  masjidDisplay(data),
		Cluster: clusterDisplay(data),
		IsHafiz: isHafiz(data),
	}
}

func volunteerName(data map[string]any) string {
	if name := firstString(data, "name", "displayName", ""); name != "" {
		return name
	}
	for _, key := range detailKeys {
		switch details := data[key].(type) {
		case []any:
			if len(details) > 0 {
				if m, ok := details[0].(map[string]any); ok {
					if name := Text(m["name"]); name != "" {
						return name
					}
				}
			}
		case map[string]any:
			if name := Text(details["name"]); name != "" {
				return name
			}
		}
	}
	return UnknownName
}

// firstString returns the first non-blank string among keys; the last argument is the default.
func firstString(data map[string]any, keysAndDefault ...string) string {
	keys, def := keysAndDefault[:len(keysAndDefault)-1], keysAndDefault[len(keysAndDefault)-1]
	for _, k := range keys {
		if s := strings.TrimSpace(str(data[k])); s != "" {
			return s
		}
	}
	return def
}

func masjidDisplay(data map[string]any) string {
	return display(data, "masjidName", MultipleMasjids)
}

func clusterDisplay(data map[string]any) string {
	return display(data, "clusterNumber", MultipleClusters)
}

var detailKeys = []string{"masjidDetails", "masjid_details"}

// display walks masjidDetails (or masjid_details) as a list then as an
// object, then managedMasjids[], then assignedMasjid.
func display(data map[string]any, field, multiple string) string {
	for _, key := range detailKeys {
		switch details := data[key].(type) {
		case []any:
			if v, ok := pick(details, field, multiple); ok {
				return v
			}
		case map[string]any:
			if v := Text(details[field]); v != "" {
				return v
			}
		}
	}
	if managed, ok := data["managedMasjids"].([]any); ok {
		if v, ok := pick(managed, field, multiple); ok {
			return v
		}
	}
	if assigned, ok := data["assignedMasjid"].(map[string]any); ok {
		return Text(assigned[field])
	}
	return ""
}

func pick(items []any, field, multiple string) (string, bool) {
	var distinct []string
	seen := make(map[string]bool)
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		v := Text(m[field])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		distinct = append(distinct, v)
	}
	switch len(distinct) {
	case 0:
		return "", false
	case 1:
		return distinct[0], true
	default:
		return multiple, true
	}
}

func isHafiz(data map[string]any) bool {
	name := firstString(data, "name", "displayName", "")
	if strings.Contains(strings.ToLower(name), "hafiz") {
		return true
	}
	switch v := data["isHafiz"].(type) {
	case bool:
		if v {
			return true
		}
	case string:
		if v == "true" {
			return true
		}
	}
	return str(data["role"]) == "hafiz"
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Text renders a value stored as either a string or a number, such as a cluster number.
// Integral floats drop the fraction.
func Text(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(n)
	case float64:
		if n == math.Trunc(n) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	case float32:
		return Text(float64(n))
	default:
		return strings.TrimSpace(fmt.Sprint(n))
	}
}
