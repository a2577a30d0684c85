// Package deadline locates calendar-date expressions in email text and
// scores how urgent the implied deadline is.
package deadline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const monthNames = `Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|` +
	`Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?`

// 支持的日期写法，每个 family 一个正则 + 对应的解析函数
var (
	isoPattern     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	numericPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
	monthDayPattern = regexp.MustCompile(
		`\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	dayMonthPattern = regexp.MustCompile(
		`\b(\d{1,2})\s+(` + monthNames + `)(?:,?\s+(\d{4}))?\b`)
)

type candidate struct {
	pos     int
	family  int
	year    string // empty when the match omits the year
	month   string
	day     string
}

// Scan searches text for calendar-date expressions and parses the first
// one occurring in document order. Later candidates are only considered
// when an earlier match is malformed (such as 13/45). A match without a
// year is assumed to be in the current year, rolled forward to the next
// year when that date has already passed relative to now.
//
// The returned bool reports whether any plausible date was found; no
// input produces an error.
func Scan(text string, now time.Time) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}

	var candidates []candidate
	collect := func(family int, re *regexp.Regexp, order [3]int) {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			group := func(i int) string {
				if loc[2*i] < 0 {
					return ""
				}
				return text[loc[2*i]:loc[2*i+1]]
			}
			candidates = append(candidates, candidate{
				pos:    loc[0],
				family: family,
				year:   group(order[0]),
				month:  group(order[1]),
				day:    group(order[2]),
			})
		}
	}

	collect(0, isoPattern, [3]int{1, 2, 3})
	collect(1, numericPattern, [3]int{3, 1, 2})
	collect(2, monthDayPattern, [3]int{3, 1, 2})
	collect(3, dayMonthPattern, [3]int{3, 2, 1})

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].pos != candidates[j].pos {
			return candidates[i].pos < candidates[j].pos
		}
		return candidates[i].family < candidates[j].family
	})

	for _, c := range candidates {
		if d, ok := c.resolve(now); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func (c candidate) resolve(now time.Time) (time.Time, bool) {
	month, ok := parseMonth(c.month)
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(c.day)
	if err != nil {
		return time.Time{}, false
	}

	if c.year != "" {
		year, err := strconv.Atoi(c.year)
		if err != nil {
			return time.Time{}, false
		}
		return makeDate(year, month, day)
	}

	// 没写年份：先按今年算，已过去则顺延到明年
	d, ok := makeDate(now.Year(), month, day)
	if !ok {
		return time.Time{}, false
	}
	today := truncateToDate(now)
	if d.Before(today) {
		return makeDate(now.Year()+1, month, day)
	}
	return d, true
}

// makeDate rejects impossible dates like Feb 30, which time.Date would
// silently normalize into March.
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func parseMonth(s string) (time.Month, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}

	prefix := strings.ToLower(s)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	months := map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
	m, ok := months[prefix]
	return m, ok
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysLeft returns the count of calendar days between now and the
// deadline. Negative means overdue.
func DaysLeft(deadline, now time.Time) int {
	return int(truncateToDate(deadline).Sub(truncateToDate(now)).Hours() / 24)
}
