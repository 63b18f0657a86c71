package params

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"ourtime-api/core/constants"
)

// QueryParams carries common list-endpoint query parameters.
type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

// NewQueryParams parses page/page_size/search from the request, clamping to
// sane bounds.
func NewQueryParams(c echo.Context) QueryParams {
	p := QueryParams{
		PageNumber: 1,
		PageSize:   constants.DefaultPageSize,
	}

	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		p.PageNumber = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		p.PageSize = v
		if p.PageSize > constants.MaxPageSize {
			p.PageSize = constants.MaxPageSize
		}
	}
	p.Search = c.QueryParam("search")

	return p
}
