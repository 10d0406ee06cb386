// Package analytics classifies and records page visits.
package analytics

import "strings"

// Unknown is reported for agents that match no rule.
const Unknown = "Unknown"

type rule struct {
	name    string
	needles []string
}

// Rules are checked in order; more specific platforms come first.
var deviceRules = []rule{
	{"iPhone", []string{"iphone"}},
	{"iPad", []string{"ipad"}},
	{"Android", []string{"android"}},
	{"Windows", []string{"windows"}},
	{"Mac", []string{"macintosh", "mac os"}},
	{"Linux", []string{"linux"}},
}

// Chromium derivatives include "chrome" and every engine includes "safari",
// so those are checked last.
var browserRules = []rule{
	{"Edge", []string{"edg"}},
	{"Opera", []string{"opr", "opera"}},
	{"Chrome", []string{"chrome", "crios"}},
	{"Firefox", []string{"firefox", "fxios"}},
	{"Safari", []string{"safari"}},
}

func match(ua string, rules []rule) string {
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(ua, n) {
				return r.name
			}
		}
	}
	return Unknown
}

// Classify derives a device model and browser family from a user agent.
func Classify(userAgent string) (device, browser string) {
	ua := strings.ToLower(userAgent)
	return match(ua, deviceRules), match(ua, browserRules)
}
