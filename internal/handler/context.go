package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"sprint-tracker/internal/query"
	"sprint-tracker/internal/service"
	"sprint-tracker/internal/session"
)

const sessionKey = "session"

// SetSession stores the authenticated session on the request.
func SetSession(c *gin.Context, s session.Session) {
	c.Set(sessionKey, s)
}

// CurrentSession returns the session set by the auth middleware.
func CurrentSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

// listParams reads q, sort and order. toggle=<column> moves the sort
// given by sort and order one step: none, asc, desc, none. The response
// carries the new state for the next request.
func listParams(c *gin.Context) service.ListParams {
	sort := query.ParseSort(c.Query("sort"), c.Query("order"))
	if column := strings.TrimSpace(c.Query("toggle")); column != "" {
		sort = sort.Cycle(column)
	}
	return service.ListParams{
		Search: c.Query("q"),
		Sort:   sort,
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
