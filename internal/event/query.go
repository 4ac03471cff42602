package event

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Column names the query spec may reference.
const (
	colActive         = "events.is_active"
	colOrganizationID = "events.organization_id"
	colNameLower      = "lower(events.name_main_lang)"
	colGeneralStart   = "event_interval_dates.general_start_date"
	colGeneralEnd     = "event_interval_dates.general_end_date"
)

// Sort columns accepted in EventQueryRequest.OrderColumn.
const (
	OrderByName    = "name"
	OrderByURL     = "url"
	OrderByStatus  = "status"
	OrderByCreated = "created"
	OrderByTime    = "time"
)

var orderColumns = map[string]string{
	OrderByName:    "events.name_main_lang",
	OrderByURL:     "events.url",
	OrderByStatus:  "events.event_status",
	OrderByCreated: "events.created_at",
	OrderByTime:    colGeneralStart,
}

// IsOrderColumn reports whether name can be used to sort the listing.
func IsOrderColumn(name string) bool {
	_, ok := orderColumns[name]
	return ok
}

const minSearchLength = 3

type Operator string

const (
	OpEq   Operator = "="
	OpLike Operator = "LIKE"
	OpGt   Operator = ">"
	OpLte  Operator = "<="
)

type Condition struct {
	Column string
	Op     Operator
	Value  interface{}
}

// AllOf holds when every condition holds.
type AllOf []Condition

// AnyOf holds when at least one of its groups holds.
type AnyOf []AllOf

type Sort struct {
	Column string
	Desc   bool
}

// QuerySpec is an AND of AnyOf groups plus a sort descriptor.
type QuerySpec struct {
	Filters          []AnyOf
	Sort             Sort
	JoinIntervalDate bool
}

var turkishLower = cases.Lower(language.Turkish)

// SearchVariants lowers term with Turkish casing and returns the dotted and
// dotless spellings so both match.
func SearchVariants(term string) (string, string) {
	lower := turkishLower.String(term)
	return strings.ReplaceAll(lower, "ı", "i"), strings.ReplaceAll(lower, "i", "ı")
}

// BuildQuerySpec turns a listing request into a QuerySpec for the
// organization, with time windows evaluated against now.
func BuildQuerySpec(req EventQueryRequest, organizationID uint, now time.Time) QuerySpec {
	spec := QuerySpec{
		Filters: []AnyOf{
			{{{Column: colActive, Op: OpEq, Value: true}}},
			{{{Column: colOrganizationID, Op: OpEq, Value: organizationID}}},
		},
	}

	if len([]rune(req.Search)) >= minSearchLength {
		dotted, dotless := SearchVariants(req.Search)
		spec.Filters = append(spec.Filters, AnyOf{
			{{Column: colNameLower, Op: OpLike, Value: "%" + dotted + "%"}},
			{{Column: colNameLower, Op: OpLike, Value: "%" + dotless + "%"}},
		})
	}

	if windows := timeWindows(req.StatusList, now); len(windows) > 0 {
		spec.Filters = append(spec.Filters, windows)
		spec.JoinIntervalDate = true
	}

	column, ok := orderColumns[req.OrderColumn]
	if !ok {
		column = orderColumns[OrderByTime]
	}
	spec.Sort = Sort{Column: column, Desc: strings.EqualFold(req.Direction, "DESC")}
	if column == colGeneralStart {
		spec.JoinIntervalDate = true
	}
	return spec
}

// timeWindows mirrors ClassifyTime as store-side predicates.
func timeWindows(statuses []TimeStatus, now time.Time) AnyOf {
	var windows AnyOf
	seen := map[TimeStatus]bool{}
	for _, s := range statuses {
		if seen[s] {
			continue
		}
		seen[s] = true
		switch s {
		case TimeUpcoming:
			windows = append(windows, AllOf{
				{Column: colGeneralStart, Op: OpGt, Value: now},
			})
		case TimeOngoing:
			windows = append(windows, AllOf{
				{Column: colGeneralStart, Op: OpLte, Value: now},
				{Column: colGeneralEnd, Op: OpGt, Value: now},
			})
		case TimeCompleted:
			windows = append(windows, AllOf{
				{Column: colGeneralEnd, Op: OpLte, Value: now},
			})
		}
	}
	return windows
}
