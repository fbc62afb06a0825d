package models

import "encoding/json"

// Field distinguishes "key absent" from "key present with null" in a partial
// update body. An absent key leaves the stored value unchanged; an explicit
// null clears the column.
type Field[T any] struct {
	Set   bool
	Value *T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// MapPatch is a sparse update of a map's editable fields.
type MapPatch struct {
	Title       Field[string] `json:"title"`
	Description Field[string] `json:"description"`
}

// CategoryPatch is a sparse update of a category's editable fields.
type CategoryPatch struct {
	Title       Field[string] `json:"title"`
	Description Field[string] `json:"description"`
	Color       Field[string] `json:"color"`
}

// Empty reports whether the patch touches no fields at all.
func (p MapPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set
}

func (p CategoryPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Color.Set
}
