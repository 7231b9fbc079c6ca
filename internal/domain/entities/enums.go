package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ServiceCategory tags a repair or maintenance offering
type ServiceCategory string

const (
	ServiceCategoryOilChange    ServiceCategory = "oil_change"
	ServiceCategoryBrakes       ServiceCategory = "brakes"
	ServiceCategoryTires        ServiceCategory = "tires"
	ServiceCategoryEngine       ServiceCategory = "engine"
	ServiceCategoryTransmission ServiceCategory = "transmission"
	ServiceCategoryElectrical   ServiceCategory = "electrical"
	ServiceCategoryBodyWork     ServiceCategory = "body_work"
	ServiceCategoryInspection   ServiceCategory = "inspection"
	ServiceCategoryOther        ServiceCategory = "other"
)

var serviceCategoryLabels = map[ServiceCategory]string{
	ServiceCategoryOilChange:    "Oil Change",
	ServiceCategoryBrakes:       "Brakes",
	ServiceCategoryTires:        "Tires",
	ServiceCategoryEngine:       "Engine",
	ServiceCategoryTransmission: "Transmission",
	ServiceCategoryElectrical:   "Electrical",
	ServiceCategoryBodyWork:     "Body Work",
	ServiceCategoryInspection:   "Inspection",
	ServiceCategoryOther:        "Other",
}

// ServiceCategories lists every category in display order
func ServiceCategories() []ServiceCategory {
	return []ServiceCategory{
		ServiceCategoryOilChange,
		ServiceCategoryBrakes,
		ServiceCategoryTires,
		ServiceCategoryEngine,
		ServiceCategoryTransmission,
		ServiceCategoryElectrical,
		ServiceCategoryBodyWork,
		ServiceCategoryInspection,
		ServiceCategoryOther,
	}
}

// Valid reports whether c is a known category
func (c ServiceCategory) Valid() bool {
	_, ok := serviceCategoryLabels[c]
	return ok
}

// Label returns the human readable name, e.g. "Oil Change"
func (c ServiceCategory) Label() string {
	return serviceCategoryLabels[c]
}

// ParseServiceCategory accepts either the wire value ("body_work") or the label ("Body Work"), case-insensitively.
func ParseServiceCategory(s string) (ServiceCategory, error) {
	needle := strings.TrimSpace(s)
	for _, c := range ServiceCategories() {
		if strings.EqualFold(string(c), needle) || strings.EqualFold(c.Label(), needle) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown service category %q", s)
}

// UnmarshalJSON rejects unknown categories
func (c *ServiceCategory) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseServiceCategory(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// PostType tags a feed post
type PostType string

const (
	PostTypeReview   PostType = "review"
	PostTypeQuestion PostType = "question"
	PostTypeTip      PostType = "tip"
	PostTypeShowcase PostType = "showcase"
)

// PostTypes lists every post type
func PostTypes() []PostType {
	return []PostType{PostTypeReview, PostTypeQuestion, PostTypeTip, PostTypeShowcase}
}

// Valid reports whether t is a known post type
func (t PostType) Valid() bool {
	switch t {
	case PostTypeReview, PostTypeQuestion, PostTypeTip, PostTypeShowcase:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown post types
func (t *PostType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, t, "post type")
}

// MessageType tags a chat message
type MessageType string

const (
	MessageTypeText           MessageType = "text"
	MessageTypeImage          MessageType = "image"
	MessageTypeBookingRequest MessageType = "booking_request"
	MessageTypeContactRequest MessageType = "contact_request"
)

// Valid reports whether t is a known message type
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeBookingRequest, MessageTypeContactRequest:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown message types
func (t *MessageType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, t, "message type")
}

// UrgencyLevel ranks how soon a booking is needed
type UrgencyLevel string

const (
	UrgencyLow       UrgencyLevel = "low"
	UrgencyMedium    UrgencyLevel = "medium"
	UrgencyHigh      UrgencyLevel = "high"
	UrgencyEmergency UrgencyLevel = "emergency"
)

// Valid reports whether u is a known urgency
func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown urgency levels
func (u *UrgencyLevel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, u, "urgency level")
}

// BookingStatus is the lifecycle state of a booking request
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusDeclined  BookingStatus = "declined"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusAccepted, BookingStatusDeclined, BookingStatusCancelled},
	BookingStatusAccepted:  {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusDeclined:  nil,
	BookingStatusCompleted: nil,
	BookingStatusCancelled: nil,
}

// Valid reports whether s is a known status
func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return s.Valid() && len(bookingTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// UnmarshalJSON rejects unknown statuses
func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, "booking status")
}

type stringEnum interface {
	~string
	Valid() bool
}

func unmarshalEnum[T stringEnum](data []byte, dst *T, kind string) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := T(strings.ToLower(strings.TrimSpace(raw)))
	if !v.Valid() {
		return fmt.Errorf("unknown %s %q", kind, raw)
	}
	*dst = v
	return nil
}
