package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"adpulse/internal/dataset"
	apierrors "adpulse/internal/errors"
)

const dateParamLayout = "2006-01-02"

// defaultCampaignLimit caps the campaign table when the client does not
// ask for a specific size.
const defaultCampaignLimit = 50

var validate = validator.New()

// dashboardQuery carries the filter parameters shared by every
// dashboard endpoint.
type dashboardQuery struct {
	From     string   `validate:"omitempty,datetime=2006-01-02"`
	To       string   `validate:"omitempty,datetime=2006-01-02"`
	Channels []string `validate:"dive,min=1,max=64"`
	States   []string `validate:"dive,min=1,max=64"`
	Limit    int      `validate:"min=0,max=1000"`
}

// parseDashboardQuery reads the common filter parameters from the
// request query string. Date bounds are inclusive on both ends.
func parseDashboardQuery(r *http.Request) (*dashboardQuery, *apierrors.APIError) {
	q := r.URL.Query()

	query := &dashboardQuery{
		From:     strings.TrimSpace(q.Get("from")),
		To:       strings.TrimSpace(q.Get("to")),
		Channels: splitParam(q.Get("channels")),
		States:   splitParam(q.Get("states")),
	}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apierrors.ErrValidation("limit", "limit must be an integer")
		}
		query.Limit = limit
	}

	if err := validate.Struct(query); err != nil {
		return nil, validationErrors(err)
	}

	if query.From != "" && query.To != "" && query.To < query.From {
		return nil, apierrors.ErrValidation("to", "to must not be before from")
	}

	return query, nil
}

// Filter converts the parsed query into a dataset filter.
func (q *dashboardQuery) Filter() dataset.Filter {
	f := dataset.Filter{
		Channels: q.Channels,
		States:   q.States,
	}
	if q.From != "" {
		f.From, _ = time.Parse(dateParamLayout, q.From)
	}
	if q.To != "" {
		f.To, _ = time.Parse(dateParamLayout, q.To)
	}
	return f
}

// splitParam parses a comma separated multi-value parameter.
func splitParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validationErrors maps validator failures onto the API error shape.
func validationErrors(err error) *apierrors.APIError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return apierrors.NewValidationErrors(fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "min":
		return "value too small"
	case "max":
		return "value too large"
	default:
		return "invalid value"
	}
}
