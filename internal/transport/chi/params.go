package chi

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// searchParams holds the bound query of GET /search.
type searchParams struct {
	Tags      *string `query:"tags"`
	Longitude float64 `query:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64 `query:"latitude" validate:"gte=-90,lte=90"`
	Radius    float64 `query:"radius" validate:"gte=0"`
	Count     int     `query:"count" validate:"gte=0"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func paramsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			return f.Tag.Get("query")
		})
	})
	return validate
}

// bindSearchParams binds and validates the query of GET /search.
// Every failure is a *domain.ValidationError naming the offending parameter.
func bindSearchParams(q url.Values) (searchParams, error) {
	var p searchParams

	if err := bindQuery(q, "tags", false, &p.Tags); err != nil {
		return p, err
	}
	if err := bindQuery(q, "longitude", true, &p.Longitude); err != nil {
		return p, err
	}
	if err := bindQuery(q, "latitude", true, &p.Latitude); err != nil {
		return p, err
	}
	if err := bindQuery(q, "radius", true, &p.Radius); err != nil {
		return p, err
	}
	if err := bindQuery(q, "count", true, &p.Count); err != nil {
		return p, err
	}

	if err := paramsValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return p, domain.NewValidationError(fe.Field(), fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param()))
		}
		return p, domain.NewValidationError("query", err.Error())
	}
	return p, nil
}

func bindQuery(q url.Values, name string, required bool, dest any) error {
	if _, ok := q[name]; !ok && required {
		return domain.NewValidationError(name, "is required")
	}
	if err := runtime.BindQueryParameter("form", true, required, name, q, dest); err != nil {
		return domain.NewValidationError(name, "is malformed")
	}
	return nil
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
