package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	projectIDRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{4,28}[a-z0-9]$`)
	regionRegex    = regexp.MustCompile(`^[a-z]+-[a-z]+[0-9]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("gcpproject", func(fl validator.FieldLevel) bool {
		return projectIDRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("gcpregion", func(fl validator.FieldLevel) bool {
		return regionRegex.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the configuration and returns a readable error for the first
// group of invalid fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %s", describe(verrs))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.UseStaticIP && !c.UseLoadBalancer && c.CustomDomain == "" {
		return fmt.Errorf("invalid configuration: useStaticIP requires a customDomain or useLoadBalancer")
	}
	if c.LoadBalancerResources != nil && !c.LoadBalancerResources.IsComplete() {
		return fmt.Errorf("invalid configuration: loadBalancerResources is incomplete (missing ipAddress or names)")
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "gcpproject":
			parts = append(parts, fmt.Sprintf("%s %q is not a valid project ID", field, fe.Value()))
		case "gcpregion":
			parts = append(parts, fmt.Sprintf("%s %q is not a valid region", field, fe.Value()))
		case "fqdn":
			parts = append(parts, fmt.Sprintf("%s %q is not a valid domain name", field, fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %q (%s)", field, fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(parts, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
