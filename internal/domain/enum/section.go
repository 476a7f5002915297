package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Section is the storefront department a product or category is listed under.
type Section string

const (
	SectionNone        Section = ""
	SectionMen         Section = "men"
	SectionWomen       Section = "women"
	SectionKids        Section = "kids"
	SectionAccessories Section = "accessories"
)

func (s Section) IsValid() bool {
	switch s {
	case SectionNone, SectionMen, SectionWomen, SectionKids, SectionAccessories:
		return true
	}
	return false
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if !Section(str).IsValid() {
		return fmt.Errorf("unknown section %q", str)
	}
	*s = Section(str)
	return nil
}

func (s Section) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *Section) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = SectionNone
	case string:
		*s = Section(v)
	case []byte:
		*s = Section(v)
	default:
		return fmt.Errorf("cannot scan %T into Section", value)
	}
	return nil
}
