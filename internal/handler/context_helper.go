package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/duetday/duetday-api/internal/middleware"
	"github.com/duetday/duetday-api/internal/models"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// queryInt parses an optional integer query parameter. A missing parameter
// yields nil; a malformed one yields a validation error.
func queryInt(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must be an integer")
	}
	return &v, nil
}

// seriesToggle reads the flag that widens an edit or delete from one
// occurrence to its whole series. Edits use ?updateRepeat, deletes
// ?deleteRepeat; ?applyToSeries is accepted as an alias on both. Absent
// means single-occurrence.
func seriesToggle(c *gin.Context, name string) bool {
	return c.Query(name) == "true" || c.Query("applyToSeries") == "true"
}

func updateRepeat(c *gin.Context) bool { return seriesToggle(c, "updateRepeat") }

func deleteRepeat(c *gin.Context) bool { return seriesToggle(c, "deleteRepeat") }

func calendarFilter(c *gin.Context) (year, month, day *int, err error) {
	if year, err = queryInt(c, "year"); err != nil {
		return nil, nil, nil, err
	}
	if month, err = queryInt(c, "month"); err != nil {
		return nil, nil, nil, err
	}
	if month != nil && (*month < 1 || *month > 12) {
		return nil, nil, nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	if day, err = queryInt(c, "day"); err != nil {
		return nil, nil, nil, err
	}
	if day != nil && (*day < 1 || *day > 31) {
		return nil, nil, nil, appErrors.Clone(appErrors.ErrValidation, "day must be between 1 and 31")
	}
	return year, month, day, nil
}
