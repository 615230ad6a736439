package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// body is the HCL implementation of config.Body.
type body struct {
	hcl     hcl.Body
	evalCtx *hcl.EvalContext
}

var _ config.Body = (*body)(nil)

type fieldSpec struct {
	index    int
	optional bool
}

// Decode walks the `cfg` tags of target, evaluates the matching attributes
// and converts each value to the field's Go type. Unknown attributes are an
// error, so a typo in a source block fails at startup.
func (b *body) Decode(ctx context.Context, target any) error {
	logger := ctxlog.FromContext(ctx)

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Pointer || structVal.IsNil() || structVal.Elem().Kind() != reflect.Struct {
		return errors.New("decode target must be a non-nil pointer to a struct")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	fields := make(map[string]fieldSpec)
	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		tag := f.Tag.Get("cfg")
		if !f.IsExported() || tag == "" || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fields[name] = fieldSpec{index: i, optional: opts == "optional"}
	}

	attrs, diags := b.hcl.JustAttributes()
	if diags.HasErrors() {
		return diags
	}
	for name, attr := range attrs {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("%s: unsupported argument %q", attr.NameRange, name)
		}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := fields[name]
		attr, ok := attrs[name]
		if !ok {
			if field.optional {
				continue
			}
			return fmt.Errorf("missing required argument %q", name)
		}

		val, diags := attr.Expr.Value(b.evalCtx)
		if diags.HasErrors() {
			return diags
		}
		if err := decodeValue(val, structVal.Field(field.index).Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument '%s': %w", name, err)
		}
		logger.Debug("Decoded source argument.", "argument", name, "type", val.Type().FriendlyName())
	}
	return nil
}

// decodeValue converts val into the Go value target points at. Durations
// are written as strings like "250ms".
func decodeValue(val cty.Value, target any) error {
	if !val.IsWhollyKnown() {
		return errors.New("value is not known")
	}
	if val.IsNull() {
		return nil
	}

	switch t := target.(type) {
	case *cty.Value:
		*t = val
		return nil
	case *time.Duration:
		s, err := convert.Convert(val, cty.String)
		if err != nil {
			return fmt.Errorf("expected a duration string: %w", err)
		}
		d, err := time.ParseDuration(s.AsString())
		if err != nil {
			return err
		}
		*t = d
		return nil
	}

	goType, err := gocty.ImpliedType(reflect.ValueOf(target).Elem().Interface())
	if err != nil {
		return fmt.Errorf("unsupported field type %T: %w", target, err)
	}
	converted, err := convert.Convert(val, goType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), goType.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, target)
}
