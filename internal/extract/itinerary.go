package extract

import (
	"regexp"
	"strconv"
	"strings"
)

type ActivityType string

const (
	TypeVisit    ActivityType = "visit"
	TypeMeal     ActivityType = "meal"
	TypeActivity ActivityType = "activity"
	TypeTravel   ActivityType = "travel"
)

// Activity is one timed line of a day plan.
type Activity struct {
	Time     string       `json:"time"`
	Activity string       `json:"activity"`
	Location string       `json:"location,omitempty"`
	Type     ActivityType `json:"type,omitempty"`
}

// DayItinerary groups the activities found under one "Day N" heading.
type DayItinerary struct {
	Day        int        `json:"day"`
	Date       string     `json:"date,omitempty"`
	Title      string     `json:"title,omitempty"`
	Activities []Activity `json:"activities"`
}

var (
	dayHeadingRe  = regexp.MustCompile(`(?i)^#+\s*Day\s+(\d+)(.*)$`)
	activityRe    = regexp.MustCompile(`(?i)^[*-]?\s*(\d{1,2}:\d{2}\s*(?:AM|PM)?(?:\s*[-–]\s*\d{1,2}:\d{2}\s*(?:AM|PM)?)?)\s*[:-]\s*(.+)`)
	locationRe    = regexp.MustCompile(`(?i)^(.+?)\s+(?:at|in|@)\s+(.+)$`)
	headingDateRe = regexp.MustCompile(`(?i)\b(\d{4}-\d{2}-\d{2}|\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*(?:\s+\d{4})?|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?)\b`)
)

// Keyword sets in precedence order; the first set with a hit wins.
var activityKeywords = []struct {
	typ      ActivityType
	keywords []string
}{
	{TypeMeal, []string{"breakfast", "lunch", "dinner", "meal", "eat"}},
	{TypeVisit, []string{"visit", "museum", "temple", "fort"}},
	{TypeTravel, []string{"travel", "drive", "flight"}},
}

type lineKind int

const (
	lineOther lineKind = iota
	lineDayHeading
	lineActivity
)

// classifiedLine is the result of running the pattern matchers over one line.
type classifiedLine struct {
	kind     lineKind
	day      int
	heading  string
	activity Activity
}

func classifyLine(line string) classifiedLine {
	if day, rest, ok := matchDayHeading(line); ok {
		return classifiedLine{kind: lineDayHeading, day: day, heading: rest}
	}
	if a, ok := matchActivity(line); ok {
		return classifiedLine{kind: lineActivity, activity: a}
	}
	return classifiedLine{kind: lineOther}
}

func matchDayHeading(line string) (int, string, bool) {
	m := dayHeadingRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return day, m[2], true
}

func matchActivity(line string) (Activity, bool) {
	m := activityRe.FindStringSubmatch(line)
	if m == nil {
		return Activity{}, false
	}
	text := strings.TrimSpace(m[2])
	a := Activity{
		Time:     strings.TrimSpace(m[1]),
		Activity: text,
		Type:     classifyActivity(text),
	}
	if loc := locationRe.FindStringSubmatch(text); loc != nil {
		a.Activity = strings.TrimSpace(loc[1])
		a.Location = strings.TrimSpace(loc[2])
	}
	return a, true
}

func classifyActivity(text string) ActivityType {
	lower := strings.ToLower(text)
	for _, set := range activityKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.typ
			}
		}
	}
	return TypeActivity
}

// headingDetails splits the text after "Day N" into a title and an optional
// calendar date.
func headingDetails(rest string) (title, date string) {
	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(rest), ":-–—|*#"))
	if m := headingDateRe.FindString(title); m != "" {
		date = m
	}
	return title, date
}

// itineraryParser holds the single open day between lines. open == nil is
// the "no day open" state.
type itineraryParser struct {
	days []DayItinerary
	open *DayItinerary
}

func (p *itineraryParser) step(line string) {
	cl := classifyLine(line)
	switch cl.kind {
	case lineDayHeading:
		p.flush()
		title, date := headingDetails(cl.heading)
		p.open = &DayItinerary{Day: cl.day, Title: title, Date: date}
	case lineActivity:
		if p.open != nil {
			p.open.Activities = append(p.open.Activities, cl.activity)
		}
	}
}

// flush closes the open day; days without activities are dropped.
func (p *itineraryParser) flush() {
	if p.open != nil && len(p.open.Activities) > 0 {
		p.days = append(p.days, *p.open)
	}
	p.open = nil
}

// ParseItinerary extracts the day-by-day plan from markdown prose. Days are
// returned in the order their headings appear; numbering is not corrected.
func ParseItinerary(text string) []DayItinerary {
	var p itineraryParser
	for _, line := range strings.Split(text, "\n") {
		p.step(strings.TrimSuffix(line, "\r"))
	}
	p.flush()
	return p.days
}
