package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID extracts the authenticated user's identifier from the request
// context, where the JWT middleware stored it.  It returns "" for
// unauthenticated requests so log context fields stay optional.
func userID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		return v
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// pathID parses a numeric :id path parameter.  The second return is
// false when the parameter is missing, malformed or zero.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
