package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/domain/ledger"
)

const dateLayout = "2006-01-02"

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	return page
}

// dateQuery lee una fecha RFC3339 o YYYY-MM-DD. Con endOfDay una fecha sin hora
// cubre el día completo (filtro "to" inclusivo).
func dateQuery(c *fiber.Ctx, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, &ledger.ValidationError{Field: name, Reason: "fecha inválida, use YYYY-MM-DD o RFC3339"}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func dateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = dateQuery(c, "from", false); err != nil {
		return nil, nil, err
	}
	if to, err = dateQuery(c, "to", true); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
