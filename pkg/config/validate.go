package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints, the sort key and the source URLs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if _, err := layout.ParseSortKey(c.Layout.Sort); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout.sort")
	}
	for _, loc := range []string{c.Data.Countries, c.Data.Links} {
		if err := errors.ValidateSourceURL(loc); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "data source")
		}
	}
	b := c.Layout.Brick
	if b.Length <= 0 || b.Height <= 0 || b.Depth <= 0 || b.Mass <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.brick: dimensions and mass must be positive, got %+v", b)
	}
	if c.Sim.BoostedDivisor < c.Sim.TimeDivisor {
		return errors.New(errors.ErrCodeInvalidConfig, "sim.boosted_divisor (%v) must not be below sim.time_divisor (%v)",
			c.Sim.BoostedDivisor, c.Sim.TimeDivisor)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(msgs, "; "))
}
