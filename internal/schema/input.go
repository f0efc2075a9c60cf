package schema

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/BunnySweety/kollab-sub001/internal/property"
)

// PropertyInput 是调用方提交的一列定义。
// Key 为空表示新列；Key 为已有列的键时表示修改（可能是重命名）。
type PropertyInput struct {
	Key     string        `json:"key,omitempty"`
	Name    string        `json:"name"`
	Type    property.Type `json:"type"`
	Options []string      `json:"options,omitempty"`
	Format  string        `json:"format,omitempty"`
}

// PropertyList 是有序的列定义列表。
// 它既接受 JSON 数组，也接受 JSON 对象；对象形式时按文档中键出现的顺序解析，
// 因为列顺序正是由提交顺序决定的，不能经过 map 丢失。
type PropertyList []PropertyInput

func (l *PropertyList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var list []PropertyInput
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("properties must be a JSON array or object")
	}
	var out PropertyList
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var in PropertyInput
		if err := dec.Decode(&in); err != nil {
			return err
		}
		if in.Key == "" {
			in.Key = key
		}
		if in.Name == "" {
			in.Name = key
		}
		out = append(out, in)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}

// CreateInput 是 CreateSchema 的参数
type CreateInput struct {
	WorkspaceID string
	Name        string
	Description string
	Properties  PropertyList
	Views       []View
	CreatedBy   string
}

// UpdateInput 是 UpdateSchema 的参数。Name / Description 为 nil 表示不修改。
// Properties 和 Views 总是整体替换。
type UpdateInput struct {
	Name        *string
	Description *string
	Properties  PropertyList
	Views       []View
}
