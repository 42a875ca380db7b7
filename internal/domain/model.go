package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Core domain models used internally. Transport shapes live in internal/api;
// keep these decoupled where helpful.

type ListingType string

const (
	ListingSale  ListingType = "SALE"
	ListingLease ListingType = "LEASE"
	ListingRent  ListingType = "RENT"
	ListingHotel ListingType = "HOTEL"
)

type AssetCategory string

const (
	CategoryLand      AssetCategory = "LAND"
	CategoryHouse     AssetCategory = "HOUSE"
	CategoryHotelRoom AssetCategory = "HOTEL_ROOM"
)

type PartnerKind string

const (
	PartnerRealEstate PartnerKind = "REAL_ESTATE"
	PartnerHotel      PartnerKind = "HOTEL"
)

type AlertCategory string

const (
	AlertFraud        AlertCategory = "FRAUD"
	AlertSecurity     AlertCategory = "SECURITY"
	AlertAuthenticity AlertCategory = "AUTHENTICITY"
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// ListingDraft is what a partner submits before screening. It is consumed once.
type ListingDraft struct {
	Title       string
	Description string
	Price       decimal.Decimal // NGN
	Location    string
	Type        ListingType
}

// ListingVerdict is the screener's judgment. Verified and Flagged are
// independent; (false, false) means uncertain but not blocking.
type ListingVerdict struct {
	Verified bool
	Flagged  bool
	Reason   string
}

// LogLine is one unstructured activity record.
type LogLine string

type SecurityAlert struct {
	ID        string
	Category  AlertCategory
	Message   string
	Severity  Severity
	Timestamp time.Time
}

type Partner struct {
	ID            string
	Name          string
	Kind          PartnerKind
	Email         string
	Domain        string // registrable domain of Email
	ContactPerson string
	Approved      bool
	CreatedAt     time.Time
}

type Listing struct {
	ID          string
	PartnerID   string
	Title       string
	Description string
	Type        ListingType
	Category    AssetCategory
	Price       decimal.Decimal
	Location    string
	Features    []string
	Images      []string
	Rating      *int // hotel rooms only
	Verified    bool
	Flagged     bool
	FlagReason  string
	CreatedAt   time.Time
}

type ListingStatus string

const (
	StatusVerified   ListingStatus = "VERIFIED"
	StatusUnverified ListingStatus = "UNVERIFIED"
	StatusFlagged    ListingStatus = "FLAGGED"
)

// Status derives the publication state from the stored verdict fields.
func (l Listing) Status() ListingStatus {
	switch {
	case l.Flagged:
		return StatusFlagged
	case l.Verified:
		return StatusVerified
	default:
		return StatusUnverified
	}
}

// Draft returns the subset of the listing the screener looks at.
func (l Listing) Draft() ListingDraft {
	return ListingDraft{Title: l.Title, Description: l.Description, Price: l.Price, Location: l.Location, Type: l.Type}
}

func normalize(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func ParseListingType(s string) (ListingType, bool) {
	switch t := ListingType(normalize(s)); t {
	case ListingSale, ListingLease, ListingRent, ListingHotel:
		return t, true
	}
	return "", false
}

func ParseAssetCategory(s string) (AssetCategory, bool) {
	switch c := AssetCategory(normalize(s)); c {
	case CategoryLand, CategoryHouse, CategoryHotelRoom:
		return c, true
	}
	return "", false
}

func ParsePartnerKind(s string) (PartnerKind, bool) {
	switch k := PartnerKind(normalize(s)); k {
	case PartnerRealEstate, PartnerHotel:
		return k, true
	}
	return "", false
}

// ClampAlertCategory maps free text from the classifier onto the closed set.
// Anything unrecognised becomes SECURITY.
func ClampAlertCategory(s string) AlertCategory {
	if c := AlertCategory(normalize(s)); c.Valid() {
		return c
	}
	return AlertSecurity
}

// ClampSeverity maps free text onto LOW/MEDIUM/HIGH, defaulting to MEDIUM.
func ClampSeverity(s string) Severity {
	if v := Severity(normalize(s)); v.Valid() {
		return v
	}
	return SeverityMedium
}

func (c AlertCategory) Valid() bool {
	return c == AlertFraud || c == AlertSecurity || c == AlertAuthenticity
}

func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}
