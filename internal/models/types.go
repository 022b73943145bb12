package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// JsonNullString 包裝 sql.NullString，讓可空欄位在 JSON 中輸出為字串或 null。
type JsonNullString struct {
	sql.NullString
}

// MarshalJSON 實現 json.Marshaler 介面。
func (jns JsonNullString) MarshalJSON() ([]byte, error) {
	if !jns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(jns.String)
}

// UnmarshalJSON 實現 json.Unmarshaler 介面。
func (jns *JsonNullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		jns.String, jns.Valid = "", false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		jns.String, jns.Valid = "", false
		return fmt.Errorf("JsonNullString: 期望 JSON 字串或 null，但得到 '%s': %w", string(data), err)
	}
	jns.String, jns.Valid = s, true
	return nil
}

// NullStringFrom 由一般字串建立 JsonNullString，空字串視為 null。
func NullStringFrom(s string) *JsonNullString {
	return &JsonNullString{NullString: sql.NullString{String: s, Valid: s != ""}}
}
