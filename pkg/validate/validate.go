// Package validate provides struct-tag validation for request inputs.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	gte=N               number >= N
//	lte=N               number <= N
//	in=a,b,c            value must be one of the listed items
//	date                parseable date (RFC 3339 or YYYY-MM-DD)
//
// Example:
//
//	type Input struct {
//	    Email    string `json:"email"    validate:"required,email"`
//	    Quantity int    `json:"quantity" validate:"required,gte=1"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Struct validates all exported fields of v carrying a `validate` tag.
// Returns a map of fieldName → error message; empty map means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonFieldName(field)
		value := rv.Field(i)
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(strings.TrimSpace(rule), name, value); msg != "" {
				errs[name] = msg
				break // first failing rule per field
			}
		}
	}
	return errs
}

// HasErrors reports whether errs contains any failure.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// splitRules splits the tag on commas, folding bare segments after an
// in=... rule back into its value list so "in=a,b,c" stays one rule.
func splitRules(tag string) []string {
	parts := strings.Split(tag, ",")
	rules := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(rules) > 0 &&
			strings.HasPrefix(rules[len(rules)-1], "in=") &&
			!strings.ContainsRune(p, '=') && !isRuleName(p) {
			rules[len(rules)-1] += "," + p
			continue
		}
		rules = append(rules, p)
	}
	return rules
}

func isRuleName(s string) bool {
	switch strings.TrimSpace(s) {
	case "required", "nullable", "email", "date":
		return true
	}
	return false
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" {
		return field.Name
	}
	return tag
}

func hasRule(rules []string, name string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == name {
			return true
		}
	}
	return false
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

func applyRule(rule, name string, v reflect.Value) string {
	arg := ""
	if idx := strings.IndexByte(rule, '='); idx >= 0 {
		rule, arg = rule[:idx], rule[idx+1:]
	}

	switch rule {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("%s is required", name)
		}

	case "email":
		if !emailRe.MatchString(v.String()) {
			return fmt.Sprintf("%s must be a valid email address", name)
		}

	case "min":
		n, _ := strconv.ParseFloat(arg, 64)
		if num, ok := numeric(v); ok {
			if num < n {
				return fmt.Sprintf("%s must be at least %s", name, arg)
			}
		} else if float64(len([]rune(v.String()))) < n {
			return fmt.Sprintf("%s must be at least %s characters", name, arg)
		}

	case "max":
		n, _ := strconv.ParseFloat(arg, 64)
		if num, ok := numeric(v); ok {
			if num > n {
				return fmt.Sprintf("%s must be at most %s", name, arg)
			}
		} else if float64(len([]rune(v.String()))) > n {
			return fmt.Sprintf("%s must be at most %s characters", name, arg)
		}

	case "gte":
		n, _ := strconv.ParseFloat(arg, 64)
		if num, ok := numeric(v); ok && num < n {
			return fmt.Sprintf("%s must be greater than or equal to %s", name, arg)
		}

	case "lte":
		n, _ := strconv.ParseFloat(arg, 64)
		if num, ok := numeric(v); ok && num > n {
			return fmt.Sprintf("%s must be less than or equal to %s", name, arg)
		}

	case "in":
		allowed := strings.Split(arg, ",")
		got := fmt.Sprintf("%v", v.Interface())
		for _, a := range allowed {
			if got == a {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of: %s", name, strings.Join(allowed, ", "))

	case "date":
		s := v.String()
		if _, err := time.Parse(time.RFC3339, s); err == nil {
			return ""
		}
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return ""
		}
		return fmt.Sprintf("%s must be a valid date", name)
	}

	return ""
}

func numeric(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}
