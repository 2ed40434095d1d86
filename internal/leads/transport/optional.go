package transport

import "encoding/json"

// OptionalString distinguishes an absent field from an explicit null.
// Set is true whenever the key is present; Value is nil for null or "".
type OptionalString struct {
	Value *string
	Set   bool
}

func (o OptionalString) IsZero() bool {
	return !o.Set
}

// Clear reports whether the field was sent to erase the stored value.
func (o OptionalString) Clear() bool {
	return o.Set && o.Value == nil
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		o.Value = nil
		return nil
	}
	o.Value = &raw
	return nil
}
