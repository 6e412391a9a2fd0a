package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleManager UserRole = "MANAGER"
	UserRoleAgent   UserRole = "AGENT"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleAgent:
		return true
	}
	return false
}

func (r UserRole) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%s is not a valid UserRole", string(r))
	}
	return string(r), nil
}

func (r *UserRole) Scan(value interface{}) error {
	s, err := scanEnumString(value)
	if err != nil {
		return err
	}
	*r = UserRole(s)
	return nil
}

type CheckInStatus string

const (
	CheckInStatusPending  CheckInStatus = "PENDING"
	CheckInStatusApproved CheckInStatus = "APPROVED"
	CheckInStatusFlagged  CheckInStatus = "FLAGGED"
)

func (s CheckInStatus) IsValid() bool {
	switch s {
	case CheckInStatusPending, CheckInStatusApproved, CheckInStatusFlagged:
		return true
	}
	return false
}

func (s CheckInStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%s is not a valid CheckInStatus", string(s))
	}
	return string(s), nil
}

func (s *CheckInStatus) Scan(value interface{}) error {
	v, err := scanEnumString(value)
	if err != nil {
		return err
	}
	*s = CheckInStatus(v)
	return nil
}

type VisitType string

const (
	VisitTypeIndividual VisitType = "INDIVIDUAL"
	VisitTypeCustomer   VisitType = "CUSTOMER"
)

func (t VisitType) IsValid() bool {
	switch t {
	case VisitTypeIndividual, VisitTypeCustomer:
		return true
	}
	return false
}

func (t VisitType) Value() (driver.Value, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%s is not a valid VisitType", string(t))
	}
	return string(t), nil
}

func (t *VisitType) Scan(value interface{}) error {
	v, err := scanEnumString(value)
	if err != nil {
		return err
	}
	*t = VisitType(v)
	return nil
}

func scanEnumString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	}
	return "", errors.New("enum value must be a string")
}
