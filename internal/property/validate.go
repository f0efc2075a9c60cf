package property

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
)

// validator 把请求中的原始值转换为类型化的 Value。Value 和 error 都为 nil 表示清空单元格。
type validator func(loc *time.Location, def Definition, raw any) (Value, *apperr.FieldError)

var validators map[Type]validator

func init() {
	validators = map[Type]validator{
		TypeTitle:       validateTitle,
		TypeText:        validateText,
		TypeNumber:      validateNumber,
		TypeEmail:       validateEmail,
		TypeURL:         validateURL,
		TypeDate:        validateDate,
		TypeCheckbox:    validateCheckbox,
		TypeSelect:      validateSelect,
		TypeMultiSelect: validateMultiSelect,
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 只有日期或不带时区的格式按调用方给出的时区解释
var localDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validate 按 def 校验 raw，不带时区的日期使用进程本地时区。
// 所有写路径都经过这里或 ValidateIn。
func Validate(def Definition, raw any) (Value, error) {
	return ValidateIn(time.Local, def, raw)
}

// ValidateIn 与 Validate 相同，但显式指定不带时区日期所用的时区
func ValidateIn(loc *time.Location, def Definition, raw any) (Value, error) {
	fn, ok := validators[def.Type]
	if !ok {
		return nil, apperr.Field(def.Name, "unsupported property type %q", def.Type)
	}
	if loc == nil {
		loc = time.Local
	}
	v, ferr := fn(loc, def, raw)
	if ferr != nil {
		return nil, ferr
	}
	return v, nil
}

func validateTitle(_ *time.Location, def Definition, raw any) (Value, *apperr.FieldError) {
	if isBlank(raw) {
		return nil, apperr.Field(def.Name, "%s is required", def.Name)
	}
	return TitleValue(strings.TrimSpace(stringOf(raw))), nil
}

func validateText(_ *time.Location, _ Definition, raw any) (Value, *apperr.FieldError) {
	if isBlank(raw) {
		return nil, nil
	}
	return TextValue(stringOf(raw)), nil
}

func validateNumber(_ *time.Location, def Definition, raw any) (Value, *apperr.FieldError) {
	if isBlank(raw) {
		return nil, nil
	}
	var f float64
	switch n := raw.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil, apperr.Field(def.Name, "must be a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, apperr.Field(def.Name, "must be a number")
		}
		f = parsed
	default:
		return nil, apperr.Field(def.Name, "must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, apperr.Field(def.Name, "must be a number")
	}
	return NumberValue(f), nil
}

func validateEmail(_ *time.Location, def Definition, raw any) (Value, *apperr.FieldError) {
	if isBlank(raw) {
		return nil, nil
	}
	s := strings.TrimSpace(stringOf(raw))
	if !emailPattern.MatchString(s) {
		return nil, apperr.Field(def.Name, "must be a valid email address")
	}
	return EmailValue(s), nil
}

func validateURL(_ *time.Location, def Definition, raw any) (Value, *apperr.FieldError) {
	if isBlank(raw) {
		return nil, nil
	}
	s := strings.TrimSpace(stringOf(raw))
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return nil, apperr.Field(def.Name, "must start with http:// or https://")
	}
	return URLValue(s), nil
}

func validateDate(loc *time.Location, def Definition, raw any) (Value, *apperr.FieldError) {
	if isBlank(raw) {
		return nil, nil
	}
	if t, ok := raw.(time.Time); ok {
		return DateValue(t.UTC()), nil
	}
	t, ok := ParseDate(stringOf(raw), loc)
	if !ok {
		return nil, apperr.Field(def.Name, "must be an ISO-8601 date")
	}
	return DateValue(t), nil
}

// ParseDate 读取 ISO-8601 时间。不带时区的输入按 loc 中的挂钟时间解释，结果总是 UTC。
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	for _, layout := range localDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func validateCheckbox(_ *time.Location, _ Definition, raw any) (Value, *apperr.FieldError) {
	switch b := raw.(type) {
	case nil:
		return CheckboxValue(false), nil
	case bool:
		return CheckboxValue(b), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1", "on", "checked":
			return CheckboxValue(true), nil
		}
		return CheckboxValue(false), nil
	case float64:
		return CheckboxValue(b != 0), nil
	case int:
		return CheckboxValue(b != 0), nil
	case json.Number:
		f, err := b.Float64()
		return CheckboxValue(err == nil && f != 0), nil
	}
	return CheckboxValue(false), nil
}

func validateSelect(_ *time.Location, _ Definition, raw any) (Value, *apperr.FieldError) {
	if isBlank(raw) {
		return nil, nil
	}
	return SelectValue(strings.TrimSpace(stringOf(raw))), nil
}

func validateMultiSelect(_ *time.Location, def Definition, raw any) (Value, *apperr.FieldError) {
	var items []string
	switch list := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		items = list
	case []any:
		items = make([]string, 0, len(list))
		for _, item := range list {
			if item == nil {
				continue
			}
			items = append(items, stringOf(item))
		}
	case string:
		items = strings.Split(list, ",")
	default:
		return nil, apperr.Field(def.Name, "must be a list of options")
	}

	seen := make(map[string]bool, len(items))
	out := make(MultiSelectValue, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func stringOf(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(raw)
}
