package domain

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report fields by their json names
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// checkStruct runs the struct tags of s and records every failure into verr.
func checkStruct(s any, verr *ValidationError) {
	err := getValidator().Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("input", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), tagMessage(fe))
	}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// checkLocation enforces the all-or-nothing rule and coordinate ranges.
// It returns nil when neither coordinate is supplied.
func checkLocation(lat, lng *float64, verr *ValidationError) *GeoPoint {
	switch {
	case lat == nil && lng == nil:
		return nil
	case lat == nil:
		verr.Add("latitude", "is required when longitude is set")
		return nil
	case lng == nil:
		verr.Add("longitude", "is required when latitude is set")
		return nil
	}

	ok := true
	if math.IsNaN(*lat) || *lat < -90 || *lat > 90 {
		verr.Add("latitude", "must be between -90 and 90")
		ok = false
	}
	if math.IsNaN(*lng) || *lng < -180 || *lng > 180 {
		verr.Add("longitude", "must be between -180 and 180")
		ok = false
	}
	if !ok {
		return nil
	}
	return &GeoPoint{Lat: *lat, Lng: *lng}
}
