package sqlguard

import (
	"regexp"
	"strings"
)

// Rejection reasons shown to the analyst
const (
	ReasonRequestRequired    = "request text is required"
	ReasonNoSQL              = "no SQL found"
	ReasonEmptyQuery         = "empty query"
	ReasonMultipleStatements = "multiple statements are not allowed"
	ReasonNotReadQuery       = "not a read query"
	reasonDestructivePrefix  = "destructive keyword not allowed: "
)

var (
	readPrefix  = regexp.MustCompile(`(?i)^\s*select\b`)
	destructive = regexp.MustCompile(`(?i)\b(DROP|DELETE|TRUNCATE|ALTER|INSERT|UPDATE)\b`)
)

// Rejection is returned when a statement fails extraction or policy
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func reject(reason string) *Rejection {
	return &Rejection{Reason: reason}
}

// Accepted is a statement that passed Normalize and CheckPolicy. It can only
// be built by this package, so holding one proves the checks ran.
type Accepted struct {
	sql string
}

// SQL returns the validated statement text
func (a Accepted) SQL() string {
	return a.sql
}

// IsZero reports whether a is the zero value rather than a validated statement
func (a Accepted) IsZero() bool {
	return a.sql == ""
}

// CheckPolicy enforces the read-only rule on a normalized statement.
func CheckPolicy(sql string) error {
	if !readPrefix.MatchString(sql) {
		return reject(ReasonNotReadQuery)
	}
	if m := destructive.FindStringSubmatch(sql); m != nil {
		return reject(reasonDestructivePrefix + strings.ToUpper(m[1]))
	}
	return nil
}

// Validate normalizes sql and checks it against the policy
func Validate(sql string) (Accepted, error) {
	normalized, err := Normalize(sql)
	if err != nil {
		return Accepted{}, err
	}
	if err := CheckPolicy(normalized); err != nil {
		return Accepted{}, err
	}
	return Accepted{sql: normalized}, nil
}
