package content

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Sentinels returned instead of a formatted date.
const (
	DateMissing = "날짜 정보 없음"
	DateInvalid = "잘못된 날짜 형식"
	DateError   = "날짜 형식 오류"
)

var (
	supportedLocales = []language.Tag{language.Korean, language.AmericanEnglish}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

// Layouts carrying their own offset, tried first.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
}

// Layouts without an offset; a time of day is read in the formatter's zone.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// DateFormatter renders timestamps for display in one locale and time zone.
type DateFormatter struct {
	lang language.Tag
	loc  *time.Location
	log  *zap.Logger
}

// NewDateFormatter returns a formatter for locale (a BCP 47 tag such as
// "ko-KR"). Unknown locales fall back to Korean, a nil loc to UTC and a nil
// logger to a no-op logger.
func NewDateFormatter(locale string, loc *time.Location, log *zap.Logger) *DateFormatter {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Korean
	}
	_, idx, _ := localeMatcher.Match(tag)
	return &DateFormatter{lang: supportedLocales[idx], loc: loc, log: log}
}

// Format turns a timestamp into a long human-readable date and time.
// Blank input yields DateMissing, unparseable input DateInvalid, and a
// failure while rendering DateError.
func (f *DateFormatter) Format(timestamp string) (out string) {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return DateMissing
	}

	defer func() {
		if r := recover(); r != nil {
			if f.log != nil {
				f.log.Warn("format display date", zap.String("timestamp", timestamp), zap.Any("panic", r))
			}
			out = DateError
		}
	}()
	t, ok := f.parse(timestamp)
	if !ok {
		return DateInvalid
	}
	return f.render(t.In(f.loc))
}

func (f *DateFormatter) parse(s string) (time.Time, bool) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, f.loc); err == nil {
			return t, true
		}
	}
	// A bare date is midnight UTC.
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (f *DateFormatter) render(t time.Time) string {
	if f.lang == language.AmericanEnglish {
		return t.Format("January 2, 2006 at 03:04 PM")
	}
	period := "오전"
	if t.Hour() >= 12 {
		period = "오후"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d년 %d월 %d일 %s %02d:%02d", t.Year(), int(t.Month()), t.Day(), period, hour, t.Minute())
}
