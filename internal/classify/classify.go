// Package classify maps AEOS event type names onto dashboard categories.
//
// AEOS reports the event type as a descriptive string, not an enum, and
// new firmware revisions add sub-reason suffixes ("Access denied: badge
// expired"). Exact sets cover the names seen in the field; the prefix
// rules keep unseen variants classified correctly.
package classify

import (
	"strings"

	"github.com/jmoreau/aeos-dashboard/internal/domain"
)

var grantedTypes = map[string]struct{}{
	"Access granted":                      {},
	"Access granted (first person)":       {},
	"Access granted with extended unlock": {},
}

var deniedTypes = map[string]struct{}{
	"Access denied":                      {},
	"Access denied: badge not valid":     {},
	"Access denied: badge blocked":       {},
	"Access denied: badge unknown":       {},
	"Access denied: no authorisation":    {},
	"Access denied: antipassback":        {},
	"Access denied: wrong time schedule": {},
}

var alarmTypes = map[string]struct{}{
	"Door forced open": {},
	"Door held open":   {},
	"Tailgating":       {},
}

// Event returns the category for an AEOS event type name. It accepts
// any string, including empty, and always returns a category.
func Event(eventTypeName string) domain.Category {
	name := strings.TrimSpace(eventTypeName)
	lower := strings.ToLower(name)

	if _, ok := grantedTypes[name]; ok || strings.HasPrefix(lower, "access granted") {
		return domain.CategoryGranted
	}
	if _, ok := deniedTypes[name]; ok || strings.HasPrefix(lower, "access denied") {
		return domain.CategoryDenied
	}
	if _, ok := alarmTypes[name]; ok {
		return domain.CategoryAlarm
	}
	return domain.CategoryOther
}
