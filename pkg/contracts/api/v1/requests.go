// Package api holds the wire contracts of the agridash HTTP and WebSocket
// API. Version v1 is the current stable surface.
package api

import (
	"fmt"
	"net/url"
	"strconv"

	"agridash/pkg/contracts/domain"
)

// Query parameter names accepted by every selection-aware endpoint. List
// dimensions repeat the parameter: ?country=France&country=Japan.
const (
	ParamCountry           = "country"
	ParamYear              = "year"
	ParamYearStart         = "year_start"
	ParamYearEnd           = "year_end"
	ParamCategory          = "category"
	ParamNutrient          = "nutrient"
	ParamUnit              = "unit"
	ParamWaterType         = "water_type"
	ParamErosionLevel      = "erosion_level"
	ParamStatus            = "status"
	ParamContaminationType = "contamination_type"

	ParamLimit     = "limit"
	ParamOffset    = "offset"
	ParamNormalize = "normalize"
)

// Open year bounds used when only one end of the range is given.
const (
	MinYear = 0
	MaxYear = 9999
)

// ParamError reports a query parameter that could not be parsed.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

// SelectionFromQuery builds a selection from URL query parameters. Unknown
// parameters are ignored. Only syntax is checked here; bounds are left to
// the selection's validate tags.
func SelectionFromQuery(q url.Values) (domain.Selection, error) {
	sel := domain.Selection{
		Countries:          q[ParamCountry],
		Categories:         q[ParamCategory],
		Nutrients:          q[ParamNutrient],
		Units:              q[ParamUnit],
		WaterTypes:         q[ParamWaterType],
		ErosionLevels:      q[ParamErosionLevel],
		Statuses:           q[ParamStatus],
		ContaminationTypes: q[ParamContaminationType],
	}

	for _, raw := range q[ParamYear] {
		if raw == domain.AllSentinel {
			sel.Years = nil
			break
		}
		y, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Selection{}, &ParamError{Param: ParamYear, Message: fmt.Sprintf("%q is not a year", raw)}
		}
		sel.Years = append(sel.Years, y)
	}

	start, hasStart, err := intParam(q, ParamYearStart)
	if err != nil {
		return domain.Selection{}, err
	}
	end, hasEnd, err := intParam(q, ParamYearEnd)
	if err != nil {
		return domain.Selection{}, err
	}
	if hasStart || hasEnd {
		r := &domain.YearRange{Start: MinYear, End: MaxYear}
		if hasStart {
			r.Start = start
		}
		if hasEnd {
			r.End = end
		}
		sel.YearRange = r
	}

	return sel, nil
}

func intParam(q url.Values, name string) (int, bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, &ParamError{Param: name, Message: fmt.Sprintf("%q is not an integer", raw)}
	}
	return n, true, nil
}

// PageRequest is the POST body alternative to query parameters for
// computing a page, for selections too long for a URL.
type PageRequest struct {
	Selection domain.Selection `json:"selection"`
}

// Live message types exchanged over the dashboard WebSocket.
const (
	LiveTypeCompute = "compute"
	LiveTypePage    = "page"
	LiveTypeError   = "error"
)

// LiveRequest asks the server to compute a page for a selection. ID is
// echoed back so a client can match responses to requests.
type LiveRequest struct {
	ID        string           `json:"id,omitempty" validate:"max=64"`
	Type      string           `json:"type" validate:"required,oneof=compute"`
	Page      string           `json:"page" validate:"required,max=32"`
	Selection domain.Selection `json:"selection"`
}
