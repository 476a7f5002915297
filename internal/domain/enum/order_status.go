package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// OrderStatus represents the status of an order
type OrderStatus int

const (
	OrderStatusPending    OrderStatus = 0
	OrderStatusProcessing OrderStatus = 1
	OrderStatusShipped    OrderStatus = 2
	OrderStatusDelivered  OrderStatus = 3
	OrderStatusCompleted  OrderStatus = 4
	OrderStatusCancelled  OrderStatus = 5
)

var orderStatusNames = [...]string{"pending", "processing", "shipped", "delivered", "completed", "cancelled"}

func (s OrderStatus) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("OrderStatus(%d)", int(s))
	}
	return orderStatusNames[s]
}

func (s OrderStatus) IsValid() bool {
	return s >= OrderStatusPending && int(s) < len(orderStatusNames)
}

// ParseOrderStatus maps a lowercase status name to its value.
func ParseOrderStatus(str string) (OrderStatus, error) {
	for i, name := range orderStatusNames {
		if name == str {
			return OrderStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", str)
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !OrderStatus(i).IsValid() {
			return fmt.Errorf("unknown order status %d", i)
		}
		*s = OrderStatus(i)
		return nil
	}
	parsed, err := ParseOrderStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderStatus(v)
	case int32:
		*s = OrderStatus(v)
	case int:
		*s = OrderStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}
	return nil
}
