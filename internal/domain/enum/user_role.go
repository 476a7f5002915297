package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// UserRole distinguishes shop administrators from shoppers.
type UserRole int

const (
	UserRoleCustomer UserRole = 0
	UserRoleAdmin    UserRole = 1
)

func (r UserRole) String() string {
	switch r {
	case UserRoleCustomer:
		return "customer"
	case UserRoleAdmin:
		return "admin"
	}
	return fmt.Sprintf("UserRole(%d)", int(r))
}

func ParseUserRole(str string) (UserRole, error) {
	switch str {
	case "customer":
		return UserRoleCustomer, nil
	case "admin":
		return UserRoleAdmin, nil
	}
	return 0, fmt.Errorf("unknown user role %q", str)
}

func (r UserRole) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *UserRole) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseUserRole(str)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r UserRole) Value() (driver.Value, error) {
	return int64(r), nil
}

func (r *UserRole) Scan(value interface{}) error {
	if value == nil {
		*r = UserRoleCustomer
		return nil
	}
	switch v := value.(type) {
	case int64:
		*r = UserRole(v)
	case int32:
		*r = UserRole(v)
	case int:
		*r = UserRole(v)
	default:
		return fmt.Errorf("cannot scan %T into UserRole", value)
	}
	return nil
}
