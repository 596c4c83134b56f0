package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-request-api/internal/middleware"
	"github.com/noah-isme/campus-request-api/internal/models"
)

const dateLayout = "2006-01-02"

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

func parseDateParam(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %q", raw)
	}
	return date, nil
}

// validateSaneRange rejects dates more than a year in the past or more than
// two years ahead.
func validateSaneRange(date, now time.Time) error {
	min := now.AddDate(-1, 0, 0)
	max := now.AddDate(2, 0, 0)
	if date.Before(min) || date.After(max) {
		return fmt.Errorf("date %s is outside the supported range (%s to %s)",
			date.Format(dateLayout), min.Format(dateLayout), max.Format(dateLayout))
	}
	return nil
}
