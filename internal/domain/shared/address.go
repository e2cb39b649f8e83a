package shared

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Address is a postal address stored as a JSON column
type Address struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate checks the fields required to ship a parcel
func (a Address) Validate() error {
	missing := make([]string, 0)
	for name, v := range map[string]string{
		"full_name":   a.FullName,
		"line1":       a.Line1,
		"city":        a.City,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return NewDomainError("INVALID_ADDRESS", fmt.Sprintf("Address is missing %s", strings.Join(missing, ", ")))
	}
	return nil
}

// IsEmpty reports whether no field is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Value implements driver.Valuer
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	if len(data) == 0 || string(data) == "null" {
		*a = Address{}
		return nil
	}
	type plain Address
	return json.Unmarshal(data, (*plain)(a))
}
