package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
)

// DayLayout is the local calendar day format used by every filter and output.
const DayLayout = "2006-01-02"

var codePattern = regexp.MustCompile(`^[0-9]{4}-W[0-9]{2}$`)

var (
	weekdayNames = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}
	monthShort   = [...]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}
)

// Week is a Saturday-to-Friday pay week in the resolver's location.
type Week struct {
	Code  string    `json:"codigo"`
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (w Week) StartDay() string { return w.Start.Format(DayLayout) }

func (w Week) EndDay() string { return w.End.Format(DayLayout) }

// ContainsDay reports whether a YYYY-MM-DD local day falls inside the week.
func (w Week) ContainsDay(day string) bool {
	return day >= w.StartDay() && day <= w.EndDay()
}

// Contains compares by local calendar day, not by instant.
func (w Week) Contains(t time.Time) bool {
	return w.ContainsDay(t.In(w.Start.Location()).Format(DayLayout))
}

func (w Week) IsZero() bool { return w.Code == "" }

type Resolver struct {
	loc *time.Location
}

func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{loc: loc}
}

func (r *Resolver) Location() *time.Location { return r.loc }

// LocalDay re-derives year/month/day of t in local time.
func (r *Resolver) LocalDay(t time.Time) string {
	return t.In(r.loc).Format(DayLayout)
}

// ParseDay reads a YYYY-MM-DD string as local midnight.
func (r *Resolver) ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, r.loc)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q, expected YYYY-MM-DD", s).With("date", s)
	}
	return t, nil
}

// Parse accepts either a local calendar day or an RFC3339 instant.
func (r *Resolver) Parse(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(DayLayout, s, r.loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q", s).With("date", s)
	}
	return t.In(r.loc), nil
}

// WeekOf returns the pay week enclosing t.
func (r *Resolver) WeekOf(t time.Time) Week {
	y, m, d := t.In(r.loc).Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, r.loc)

	var sinceStart int
	switch wd := date.Weekday(); wd {
	case time.Saturday:
		sinceStart = 0
	case time.Sunday:
		sinceStart = 1
	default:
		sinceStart = int(wd) + 1
	}

	start := time.Date(y, m, d-sinceStart, 0, 0, 0, 0, r.loc)
	sy, sm, sd := start.Date()
	end := time.Date(sy, sm, sd+6, 23, 59, 59, int(time.Second-time.Nanosecond), r.loc)

	return Week{
		Code:  fmt.Sprintf("%d-W%02d", sy, weekNumber(start)),
		Start: start,
		End:   end,
	}
}

// WeekOfInput resolves the week for a day string or instant string.
func (r *Resolver) WeekOfInput(s string) (Week, error) {
	t, err := r.Parse(s)
	if err != nil {
		return Week{}, err
	}
	return r.WeekOf(t), nil
}

// ResolveCode scans the code's year for a day whose week carries the code.
// Week numbers follow the moving Saturday anchor, so there is no closed form.
func (r *Resolver) ResolveCode(code string) (Week, bool) {
	if !codePattern.MatchString(code) {
		return Week{}, false
	}
	year, err := strconv.Atoi(code[:4])
	if err != nil {
		return Week{}, false
	}

	for day := time.Date(year, time.January, 1, 12, 0, 0, 0, r.loc); day.Year() == year; day = day.AddDate(0, 0, 1) {
		if w := r.WeekOf(day); w.Code == code {
			return w, true
		}
	}
	return Week{}, false
}

// Resolve picks the week from a code when present, else from a day.
func (r *Resolver) Resolve(code, day string) (Week, error) {
	switch {
	case code != "":
		if !codePattern.MatchString(code) {
			return Week{}, apperr.Validation("invalid week code %q, expected YYYY-WNN", code).With("week", code)
		}
		w, ok := r.ResolveCode(code)
		if !ok {
			return Week{}, apperr.NotFound("week", code)
		}
		return w, nil
	case day != "":
		return r.WeekOfInput(day)
	default:
		return Week{}, apperr.Validation("week code or date is required")
	}
}

// Label renders "Semana 50 (13 Dic - 19 Dic)".
func (r *Resolver) Label(w Week) string {
	num := w.Code
	if len(w.Code) > 6 {
		num = w.Code[6:]
	}
	return fmt.Sprintf("Semana %s (%s - %s)", num, shortDate(w.Start), shortDate(w.End))
}

func (r *Resolver) WeekdayName(day string) string {
	t, err := r.ParseDay(day)
	if err != nil {
		return ""
	}
	return weekdayNames[t.Weekday()]
}

// weekNumber is ceil((daysSinceJan1 + jan1.Weekday + 1) / 7), counted in calendar days.
func weekNumber(start time.Time) int {
	jan1 := time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, start.Location())
	n := start.YearDay() - 1 + int(jan1.Weekday()) + 1
	return (n + 6) / 7
}

func shortDate(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), monthShort[t.Month()-1])
}
