// Package analytics computes grouped registration statistics.
//
// Everything in this package is pure: the coordinator gathers registrations
// and trail metadata via fan-out and hands them here, so the grouping logic
// stays deterministic and independently testable. Running Compute twice over
// the same input yields identical output, including ordering.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// UnknownTrailName labels registrations whose trail could not be resolved.
const UnknownTrailName = "unknown"

// TrailInfo is the slice of trail metadata the aggregation needs.
type TrailInfo struct {
	Name   string
	Active bool
}

// Registration is the slice of registration data the aggregation needs.
type Registration struct {
	TrailID    string
	HorseCount int
	At         time.Time
}

// Totals accumulates counts for one grouping bucket.
type Totals struct {
	Registrations int `json:"registrations"`
	Horses        int `json:"horses"`
}

// TimeBucket is one day/week/month bucket with per-trail breakdown.
type TimeBucket struct {
	Key           string            `json:"key"`
	Label         string            `json:"label"`
	Registrations int               `json:"registrations"`
	Horses        int               `json:"horses"`
	ByTrail       map[string]Totals `json:"byTrail"`
}

// TrailBucket is the time-independent per-trail grouping.
type TrailBucket struct {
	TrailID       string  `json:"trailId"`
	TrailName     string  `json:"trailName"`
	Active        bool    `json:"active"`
	Registrations int     `json:"registrations"`
	Horses        int     `json:"horses"`
	AvgHorses     float64 `json:"avgHorses"`
}

// Snapshot is the full materialized analytics view. It is persisted and
// cached wholesale; consumers tolerate staleness up to one aggregation cycle.
type Snapshot struct {
	ByDay       []TimeBucket  `json:"byDay"`
	ByWeek      []TimeBucket  `json:"byWeek"`
	ByMonth     []TimeBucket  `json:"byMonth"`
	ByTrail     []TrailBucket `json:"byTrail"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// DayKey formats t as a calendar date key, YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// MonthKey formats t as a month key, YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthLabel returns a human label for the month of t, e.g. "March 2024".
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}

// WeekNumber computes a Jan-1-anchored week number:
// week = ceil((daysSinceJan1 + weekday(Jan1) + 1) / 7), with Sunday as
// weekday 0. Week 1 starts on January 1st regardless of weekday.
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := t.YearDay() - 1
	return (days + int(jan1.Weekday()) + 1 + 6) / 7
}

// WeekKey formats t as a week key, YYYY-W<n>. The week number is not
// zero-padded, so week keys must be ordered with CompareWeekKeys rather
// than lexicographically.
func WeekKey(t time.Time) string {
	return fmt.Sprintf("%d-W%d", t.Year(), WeekNumber(t))
}

// WeekLabel returns a human label for the week of t, e.g. "Week 9, 2024".
func WeekLabel(t time.Time) string {
	return fmt.Sprintf("Week %d, %d", WeekNumber(t), t.Year())
}

// CompareWeekKeys orders two week keys numerically by (year, week number).
// Returns a negative value when a sorts before b, zero when equal, positive
// otherwise. Malformed keys sort before well-formed ones.
func CompareWeekKeys(a, b string) int {
	ay, aw, aok := parseWeekKey(a)
	by, bw, bok := parseWeekKey(b)
	switch {
	case !aok && !bok:
		return strings.Compare(a, b)
	case !aok:
		return -1
	case !bok:
		return 1
	case ay != by:
		return ay - by
	default:
		return aw - bw
	}
}

func parseWeekKey(key string) (year, week int, ok bool) {
	var y, w int
	if _, err := fmt.Sscanf(key, "%d-W%d", &y, &w); err != nil {
		return 0, 0, false
	}
	return y, w, true
}

// Compute builds the full snapshot from registrations and trail metadata.
// Registrations referencing unresolved trails are grouped under
// UnknownTrailName rather than dropped.
func Compute(regs []Registration, trails map[string]TrailInfo, now time.Time) *Snapshot {
	type keyed struct {
		key   string
		label string
	}

	byDay := map[string]*TimeBucket{}
	byWeek := map[string]*TimeBucket{}
	byMonth := map[string]*TimeBucket{}
	byTrail := map[string]*TrailBucket{}

	bump := func(m map[string]*TimeBucket, k keyed, trailName string, horses int) {
		b, exists := m[k.key]
		if !exists {
			b = &TimeBucket{Key: k.key, Label: k.label, ByTrail: map[string]Totals{}}
			m[k.key] = b
		}
		b.Registrations++
		b.Horses += horses
		t := b.ByTrail[trailName]
		t.Registrations++
		t.Horses += horses
		b.ByTrail[trailName] = t
	}

	for _, r := range regs {
		name := UnknownTrailName
		if info, found := trails[r.TrailID]; found && info.Name != "" {
			name = info.Name
		}

		bump(byDay, keyed{DayKey(r.At), DayKey(r.At)}, name, r.HorseCount)
		bump(byWeek, keyed{WeekKey(r.At), WeekLabel(r.At)}, name, r.HorseCount)
		bump(byMonth, keyed{MonthKey(r.At), MonthLabel(r.At)}, name, r.HorseCount)

		tb, exists := byTrail[r.TrailID]
		if !exists {
			info := trails[r.TrailID]
			tbName := info.Name
			if tbName == "" {
				tbName = UnknownTrailName
			}
			tb = &TrailBucket{TrailID: r.TrailID, TrailName: tbName, Active: info.Active}
			byTrail[r.TrailID] = tb
		}
		tb.Registrations++
		tb.Horses += r.HorseCount
	}

	// Trails with no registrations still appear in the per-trail grouping.
	for id, info := range trails {
		if _, exists := byTrail[id]; !exists {
			name := info.Name
			if name == "" {
				name = UnknownTrailName
			}
			byTrail[id] = &TrailBucket{TrailID: id, TrailName: name, Active: info.Active}
		}
	}

	return &Snapshot{
		ByDay:       flattenTime(byDay, strings.Compare),
		ByWeek:      flattenTime(byWeek, CompareWeekKeys),
		ByMonth:     flattenTime(byMonth, strings.Compare),
		ByTrail:     flattenTrail(byTrail),
		GeneratedAt: now,
	}
}

func flattenTime(m map[string]*TimeBucket, cmp func(a, b string) int) []TimeBucket {
	out := make([]TimeBucket, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return cmp(out[i].Key, out[j].Key) < 0 })
	return out
}

func flattenTrail(m map[string]*TrailBucket) []TrailBucket {
	out := make([]TrailBucket, 0, len(m))
	for _, b := range m {
		tb := *b
		if tb.Registrations > 0 {
			tb.AvgHorses = float64(tb.Horses) / float64(tb.Registrations)
		}
		out = append(out, tb)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TrailName != out[j].TrailName {
			return out[i].TrailName < out[j].TrailName
		}
		return out[i].TrailID < out[j].TrailID
	})
	return out
}

// Clone returns a deep copy of the snapshot, safe to hand to callers while
// the original sits in the cache.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		ByDay:       cloneTimeBuckets(s.ByDay),
		ByWeek:      cloneTimeBuckets(s.ByWeek),
		ByMonth:     cloneTimeBuckets(s.ByMonth),
		ByTrail:     append([]TrailBucket(nil), s.ByTrail...),
		GeneratedAt: s.GeneratedAt,
	}
	return out
}

func cloneTimeBuckets(in []TimeBucket) []TimeBucket {
	out := make([]TimeBucket, len(in))
	for i, b := range in {
		byTrail := make(map[string]Totals, len(b.ByTrail))
		for k, v := range b.ByTrail {
			byTrail[k] = v
		}
		b.ByTrail = byTrail
		out[i] = b
	}
	return out
}
