package auditlog

import (
	"time"

	apperrors "makerspace/pkg/errors"
)

// PageSize caps every log query.
const PageSize = 100

type ErrorsMode string

const (
	ErrorsOnly ErrorsMode = "errors-only"
	NoErrors   ErrorsMode = "no-errors"
	ErrorsBoth ErrorsMode = "both"
)

// Categories known to the log pages. Rows may carry any category string.
const (
	CategoryWelcome  = "welcome"
	CategoryAuth     = "auth"
	CategoryStatus   = "status"
	CategoryState    = "state"
	CategoryHelp     = "help"
	CategoryMessage  = "message"
	CategoryServer   = "server"
	CategoryTraining = "training"
	CategoryAdmin    = "admin"
)

type Filters struct {
	Categories    []string
	Uncategorized bool
	Errors        ErrorsMode
}

// Query is a filtered, date-bounded request for log rows. Both bounds are inclusive and UTC.
type Query struct {
	Start      time.Time
	Stop       time.Time
	SearchText string
	Filters    Filters
}

// Normalize fills defaults and validates the error switch.
func (q Query) Normalize() (Query, error) {
	q.Start = q.Start.UTC()
	q.Stop = q.Stop.UTC()
	switch q.Filters.Errors {
	case "":
		q.Filters.Errors = ErrorsBoth
	case ErrorsOnly, NoErrors, ErrorsBoth:
	default:
		return q, apperrors.NewInvalidInputError("unknown errors filter %q", q.Filters.Errors)
	}
	return q, nil
}

// Empty reports a vacuous range: the stop bound precedes the start bound.
func (q Query) Empty() bool {
	return q.Stop.Before(q.Start)
}
