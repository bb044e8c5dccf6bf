package errorlog

import "strings"

// Database error codes produced by ClassifyDatabaseError.
const (
	CodeDBConnection = "DB_CONNECTION_ERROR"
	CodeDBTimeout    = "DB_TIMEOUT"
	CodeDBConstraint = "DB_CONSTRAINT_VIOLATION"
	CodeDBDuplicate  = "DB_DUPLICATE_KEY"
	CodeDBNotFound   = "DB_RECORD_NOT_FOUND"
	CodeDBPermission = "DB_PERMISSION_DENIED"
	CodeDBUnknown    = "DB_UNKNOWN_ERROR"
)

// dbErrorRules maps message fragments to codes.  Order matters: the
// first matching rule wins, so more specific fragments come first.
var dbErrorRules = []struct {
	fragment string
	code     string
}{
	{"connection", CodeDBConnection},
	{"timeout", CodeDBTimeout},
	{"constraint", CodeDBConstraint},
	{"duplicate", CodeDBDuplicate},
	{"not found", CodeDBNotFound},
	{"no rows", CodeDBNotFound},
	{"permission", CodeDBPermission},
	{"denied", CodeDBPermission},
}

// ClassifyDatabaseError maps an underlying database error to one of
// the fixed DB_* codes by substring match on its message.
func ClassifyDatabaseError(err error) string {
	if err == nil {
		return CodeDBUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, rule := range dbErrorRules {
		if strings.Contains(msg, rule.fragment) {
			return rule.code
		}
	}
	return CodeDBUnknown
}
