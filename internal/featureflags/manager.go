// Package featureflags evaluates runtime switches configured through the
// FEATURE_FLAGS setting, e.g. "index_cache=on,post_images=25%".
package featureflags

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags read by the application.
const (
	// IndexCache serves index pages through the Redis page cache.
	IndexCache = "index_cache"
	// PostImages accepts image uploads on the post form.
	PostImages = "post_images"
)

// defaults apply to flags missing from the configuration.
var defaults = map[string]bool{
	IndexCache: true,
	PostImages: true,
}

type rule struct {
	on      bool
	percent int // -1 unless the flag is a percentage rollout
}

// Manager holds the parsed flag rules.
type Manager struct {
	rules map[string]rule
}

// NewManager parses a comma-separated key=value list. Values are on/true/1,
// off/false/0 or N% for a deterministic per-user rollout. Malformed entries
// are ignored.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			rules[key] = r
		}
	}
	return &Manager{rules: rules}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{on: true, percent: -1}, true
	case "off", "false", "0":
		return rule{on: false, percent: -1}, true
	}
	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return rule{}, false
		}
		return rule{percent: min(max(pct, 0), 100)}, true
	}
	return rule{}, false
}

// Enabled returns whether a flag is enabled for a given user. Anonymous
// visitors (userID 0) only see percentage flags at 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	name = normalize(name)
	if m == nil {
		return defaults[name]
	}
	r, ok := m.rules[name]
	if !ok {
		return defaults[name]
	}
	if r.percent < 0 {
		return r.on
	}
	switch {
	case r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// Names returns every configured or defaulted flag name, sorted.
func (m *Manager) Names() []string {
	seen := make(map[string]struct{}, len(defaults))
	for name := range defaults {
		seen[name] = struct{}{}
	}
	if m != nil {
		for name := range m.rules {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	names := m.Names()
	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
