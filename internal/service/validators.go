package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern     = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern   = regexp.MustCompile(`^\d{6}$`)
	aadharPattern    = regexp.MustCompile(`^\d{12}$`)
	acadYearPattern  = regexp.MustCompile(`^\d{4}-\d{2}$`)
	slugPattern      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nameSpacePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z .'-]*$`)
)

var bloodGroups = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// NewValidator returns a validator with the institution's custom tags
// registered: Indian mobile numbers, pincodes, aadhar numbers, academic
// years ("2025-26"), URL slugs, person names and blood groups.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("aadhar", func(fl validator.FieldLevel) bool {
		return aadharPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("acadyear", func(fl validator.FieldLevel) bool {
		return acadYearPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("slugfmt", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return nameSpacePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
		return bloodGroups[fl.Field().String()]
	})

	return v
}
