package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Segment string

const (
	SegmentRestaurant Segment = "restaurant"
	SegmentHotel      Segment = "hotel"
	SegmentBoth       Segment = "both"
)

type ServiceType string

const (
	ServiceTypeBuffet   ServiceType = "buffet"
	ServiceTypeALaCarte ServiceType = "a_la_carte"
	ServiceTypeMixed    ServiceType = "mixed"
)

func (s Segment) Valid() bool {
	switch s {
	case SegmentRestaurant, SegmentHotel, SegmentBoth:
		return true
	}
	return false
}

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceTypeBuffet, ServiceTypeALaCarte, ServiceTypeMixed:
		return true
	}
	return false
}

// Contact is the person responsible for the establishment on the client side.
type Contact struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type OperationProfile struct {
	MealsPerDay int         `json:"meals_per_day"`
	ServiceType ServiceType `json:"service_type"`
}

// Client is a registered restaurant or hotel under consultancy. The ID never
// changes after registration.
type Client struct {
	ID          uuid.UUID        `json:"id"`
	CompanyName string           `json:"company_name"`
	TaxID       string           `json:"tax_id"`
	Segment     Segment          `json:"segment"`
	Address     string           `json:"address"`
	Contact     Contact          `json:"contact"`
	Operation   OperationProfile `json:"operation"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (c Client) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("client id is empty")
	}
	if strings.TrimSpace(c.CompanyName) == "" {
		return fmt.Errorf("client %s: company name is empty", c.ID)
	}
	if !c.Segment.Valid() {
		return fmt.Errorf("client %s: unknown segment %q", c.ID, c.Segment)
	}
	if !c.Operation.ServiceType.Valid() {
		return fmt.Errorf("client %s: unknown service type %q", c.ID, c.Operation.ServiceType)
	}
	if c.Operation.MealsPerDay < 0 {
		return fmt.Errorf("client %s: negative meals per day", c.ID)
	}
	return nil
}
