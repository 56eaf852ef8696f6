// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowfilter/internal/table"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func eachValue(values []string, validators ...FlagValidatorType) error {
	for _, value := range values {
		if err := FlagValidators(value, validators...); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator checks flag combinations once every flag is parsed.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.Bool("any") && len(c.StringSlice("where")) == 0 {
		return errors.New("--any needs at least one --where filter")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	valid := false
	for _, v := range validOutputFlagValues {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

func PaddingValidator(value any) error {
	if n, ok := value.(int); !ok || n < 0 {
		return fmt.Errorf("padding must be a non-negative number, got %v", value)
	}
	return nil
}

// ColumnValidator accepts name[:kind[:path]].
func ColumnValidator(value any) error {
	s, _ := value.(string)
	_, err := table.ParseColumn(s)
	return err
}

// FilterValidator accepts column=expression.
func FilterValidator(value any) error {
	return splitValidator(value, "=")
}

// WhereValidator accepts column:expression.
func WhereValidator(value any) error {
	return splitValidator(value, ":")
}

func splitValidator(value any, sep string) error {
	s, _ := value.(string)
	name, _, ok := strings.Cut(s, sep)
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("%q must look like column%sexpression", s, sep)
	}
	return nil
}
