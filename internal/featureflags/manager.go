// Package featureflags evaluates the FEATURE_FLAGS config string that
// gates optional behavior such as the realtime notification channel.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Manager holds the parsed flag rules. A nil Manager evaluates every
// flag as disabled.
type Manager struct {
	rules map[string]rule
}

type ruleKind int

const (
	kindOff ruleKind = iota
	kindOn
	kindPercent
	kindUsers
)

// rule is one parsed flag value. raw keeps the configured text for the
// admin console.
type rule struct {
	raw   string
	kind  ruleKind
	pct   int
	users map[uint]struct{}
}

// NewManager parses a comma-separated flag list. Each entry is either a
// bare flag name (enabled for everyone) or name=value, where value is
// on/off, a rollout percentage like 25%, or a pipe-separated user id
// allowlist like 4|9|17. Malformed entries are skipped.
//
// Example: "realtime_notifications,itinerary_export=25%,mod_tools=4|9"
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name := entry
		value := "on"
		if i := strings.Index(entry, "="); i >= 0 {
			name = strings.TrimSpace(entry[:i])
			value = strings.ToLower(strings.TrimSpace(entry[i+1:]))
		}
		name = strings.ToLower(name)
		if name == "" || value == "" {
			continue
		}

		if r, ok := parseRule(value); ok {
			r.raw = value
			rules[name] = r
		}
	}

	return &Manager{rules: rules}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{kind: kindOn}, true
	case "off", "false", "0":
		return rule{kind: kindOff}, true
	}

	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil || pct < 0 || pct > 100 {
			return rule{}, false
		}
		return rule{kind: kindPercent, pct: pct}, true
	}

	users := make(map[uint]struct{})
	for _, idRaw := range strings.Split(value, "|") {
		id, err := strconv.ParseUint(strings.TrimSpace(idRaw), 10, 32)
		if err != nil || id == 0 {
			return rule{}, false
		}
		users[uint(id)] = struct{}{}
	}
	return rule{kind: kindUsers, users: users}, true
}

// Enabled reports whether a flag is on for the given user. Percentage
// rollouts bucket users deterministically, so a user keeps their cohort
// across requests and restarts; anonymous callers (userID 0) never fall
// inside a partial rollout.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[strings.ToLower(name)]
	if !ok {
		return false
	}

	switch r.kind {
	case kindOn:
		return true
	case kindPercent:
		if r.pct >= 100 {
			return true
		}
		if r.pct <= 0 || userID == 0 {
			return false
		}
		return rolloutBucket(name, userID) < r.pct
	case kindUsers:
		_, targeted := r.users[userID]
		return targeted
	default:
		return false
	}
}

// Raw returns the configured value per flag, as parsed.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for name, r := range m.rules {
		out[name] = r.raw
	}
	return out
}

// Snapshot evaluates every flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", strings.ToLower(name), userID)))
	return int(h.Sum32() % 100)
}
