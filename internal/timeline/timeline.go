// Package timeline merges education and work history into one chronological list.
package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/types"
)

// Kind is the type of a timeline entry.
type Kind string

// Entry kinds
const (
	KindEducation  Kind = "education"
	KindExperience Kind = "experience"
)

// Filter selects which kinds are listed.
type Filter string

// Filters
const (
	FilterAll        Filter = "all"
	FilterEducation  Filter = "education"
	FilterExperience Filter = "experience"
)

// Status is the state shown on an entry's badge.
type Status string

// Statuses
const (
	StatusCurrent    Status = "current"
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in-progress"
)

// Present marks an ongoing period.
const Present = "Present"

// Item is one entry on the timeline.
type Item struct {
	ID           string                    `json:"id"`
	Kind         Kind                      `json:"type"`
	Title        string                    `json:"title"`
	Subtitle     string                    `json:"subtitle"`
	Location     string                    `json:"location"`
	StartDate    string                    `json:"startDate"`
	EndDate      string                    `json:"endDate"`
	Status       Status                    `json:"status"`
	Description  []string                  `json:"description"`
	Category     string                    `json:"category"`
	Progressions []types.CareerProgression `json:"progressions,omitempty"`
}

// Build converts the document's education and experience sections into
// unsorted timeline items, education first.
func Build(doc *types.Document) []Item {
	if doc == nil {
		return []Item{}
	}

	items := make([]Item, 0, len(doc.Education)+len(doc.Experience))
	for _, edu := range doc.Education {
		status := StatusCompleted
		if edu.Status == types.EducationInProgress {
			status = StatusInProgress
		}
		items = append(items, Item{
			ID:          "edu-" + edu.Title,
			Kind:        KindEducation,
			Title:       edu.Title,
			Subtitle:    fmt.Sprintf("%s | %s", edu.Major, edu.InstitutionName),
			Location:    edu.Location,
			StartDate:   edu.StartDate,
			EndDate:     edu.EndDate,
			Status:      status,
			Description: edu.Summary,
			Category:    "Education",
		})
	}

	for _, exp := range doc.Experience {
		var latest types.CareerProgression
		if len(exp.CareerProgression) > 0 {
			latest = exp.CareerProgression[0]
		}
		status := StatusCompleted
		if exp.CurrentlyWorking {
			status = StatusCurrent
		}
		items = append(items, Item{
			ID:           "exp-" + exp.Company,
			Kind:         KindExperience,
			Title:        latest.Title,
			Subtitle:     exp.Company,
			Location:     exp.Location,
			StartDate:    exp.StartDate,
			EndDate:      latest.EndDate,
			Status:       status,
			Description:  exp.KeyAchievements,
			Category:     "Experience",
			Progressions: exp.CareerProgression,
		})
	}
	return items
}

var dateLayouts = []string{
	"Jan 2006",
	"January 2006",
	"2006-01",
	"2006",
}

// ParseDate parses a display date. "Present" in any case is now.
func ParseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, Present) {
		return now, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Sort orders items by start date, newest first. Equal dates keep their
// order and unparseable dates go last.
func Sort(items []Item, now time.Time) {
	type keyed struct {
		at time.Time
		ok bool
	}
	keys := make(map[int]keyed, len(items))
	idx := make([]int, len(items))
	for i := range items {
		at, ok := ParseDate(items[i].StartDate, now)
		keys[i] = keyed{at: at, ok: ok}
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.ok != kb.ok {
			return ka.ok
		}
		return ka.at.After(kb.at)
	})

	sorted := make([]Item, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

// ParseFilter validates a filter name. Empty means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterEducation:
		return FilterEducation, nil
	case FilterExperience:
		return FilterExperience, nil
	default:
		return "", fmt.Errorf("unknown timeline filter %q (want all, education or experience)", s)
	}
}

// FilterItems returns the items matching f, preserving order.
func FilterItems(items []Item, f Filter) []Item {
	if f == FilterAll || f == "" {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if string(it.Kind) == string(f) {
			out = append(out, it)
		}
	}
	return out
}

// Compose builds, sorts and filters the timeline of doc.
func Compose(doc *types.Document, f Filter, now time.Time) []Item {
	items := Build(doc)
	Sort(items, now)
	return FilterItems(items, f)
}
