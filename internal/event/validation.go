package event

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	maxPictureMB = 5.0
	maxURLLength = 63
)

var (
	urlPattern = regexp.MustCompile(`^[A-Za-z0-9]+(?:[-_][A-Za-z0-9]+)*$`)

	allowedPictureExt = map[string]bool{"png": true, "jpg": true, "jpeg": true}
)

// CheckPicture validates an upload's extension and size.
func CheckPicture(p *Picture) error {
	if p == nil {
		return errValidation(CodeInvalidExtension, "picture is required")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(p.Filename), "."))
	if !allowedPictureExt[ext] {
		return errValidation(CodeInvalidExtension, "invalid file extension")
	}
	if megabytes(p.Size) > maxPictureMB {
		return errValidation(CodeFileTooLarge, "file size exceeded")
	}
	return nil
}

func megabytes(size int64) float64 {
	return float64(size) / 1024.0 / 1024.0
}

// CheckURLFormat validates the shape of an event url. Uniqueness needs the
// store and is checked by the service.
func CheckURLFormat(url string) error {
	if len(url) < 1 || len(url) > maxURLLength {
		return errValidation(CodeWrongURL, "wrong domain name")
	}
	if !urlPattern.MatchString(url) {
		return errValidation(CodeWrongURL, "wrong domain name")
	}
	return nil
}

const dateLayout = "2006-01-02 15:04"

// ParseLocalDateTime reads a wall-clock value in the given IANA zone and
// returns it in UTC.
func ParseLocalDateTime(value, timezone string) (time.Time, error) {
	loc, err := loadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, errValidation(CodeTimeConflict, "invalid date "+value)
	}
	return t.UTC(), nil
}

func loadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errValidation(CodeTimeConflict, "unknown timezone "+timezone)
	}
	return loc, nil
}

// inZone converts t for display; unknown zones fall back to UTC.
func inZone(t time.Time, timezone string) *time.Time {
	loc, err := loadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return &local
}

// parseIntervalDate parses the full date block of a request.
func parseIntervalDate(req SaveEventRequest, timezone string) (*EventIntervalDate, error) {
	var (
		d   EventIntervalDate
		err error
	)
	if d.GeneralStartDate, err = ParseLocalDateTime(req.GeneralStartDate, timezone); err != nil {
		return nil, err
	}
	if d.GeneralEndDate, err = ParseLocalDateTime(req.GeneralEndDate, timezone); err != nil {
		return nil, err
	}
	if d.ActiveStartDate, err = ParseLocalDateTime(req.ActiveStartDate, timezone); err != nil {
		return nil, err
	}
	if d.ActiveEndDate, err = ParseLocalDateTime(req.ActiveEndDate, timezone); err != nil {
		return nil, err
	}
	if err := checkIntervalOrder(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func checkIntervalOrder(d *EventIntervalDate) error {
	if d.GeneralStartDate.After(d.GeneralEndDate) || d.ActiveStartDate.After(d.ActiveEndDate) {
		return errValidation(CodeTimeConflict, "start date is after end date")
	}
	return nil
}
