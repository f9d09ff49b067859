package plans

import (
	"errors"
	"fmt"
	"slices"
)

// Unlimited marks a limit that is never enforced.
const Unlimited = -1

type Feature string

const (
	FeatureQRMenu         Feature = "qr_menu"
	FeaturePOS            Feature = "pos"
	FeatureKitchenDisplay Feature = "kitchen_display"
	FeatureWhatsApp       Feature = "whatsapp"
	FeatureReports        Feature = "reports"
)

type LimitKind string

const (
	LimitTables    LimitKind = "tables"
	LimitMenuItems LimitKind = "menu_items"
	LimitSeats     LimitKind = "seats"
)

type Limits struct {
	Tables    int `json:"tables"`
	MenuItems int `json:"menu_items"`
	Seats     int `json:"seats"`
}

var ErrLimitReached = errors.New("plan limit reached")

// LimitError carries which limit was hit; errors.Is(err, ErrLimitReached) holds.
type LimitError struct {
	Kind LimitKind
	Max  int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("plan limit reached: %s (max %d)", e.Kind, e.Max)
}

func (e *LimitError) Unwrap() error {
	return ErrLimitReached
}

func LimitsFor(tier string) Limits {
	switch tier {
	case TierPro:
		return Limits{Tables: Unlimited, MenuItems: Unlimited, Seats: Unlimited}
	case TierStarter:
		return Limits{Tables: 20, MenuItems: 150, Seats: 8}
	default:
		return Limits{Tables: 5, MenuItems: 30, Seats: 2}
	}
}

func FeaturesFor(tier string) []Feature {
	switch tier {
	case TierPro:
		return []Feature{FeatureQRMenu, FeaturePOS, FeatureKitchenDisplay, FeatureWhatsApp, FeatureReports}
	case TierStarter:
		return []Feature{FeatureQRMenu, FeaturePOS, FeatureKitchenDisplay, FeatureWhatsApp}
	default:
		return []Feature{FeatureQRMenu}
	}
}

func HasFeature(tier string, f Feature) bool {
	return slices.Contains(FeaturesFor(tier), f)
}

func (l Limits) Max(kind LimitKind) int {
	switch kind {
	case LimitTables:
		return l.Tables
	case LimitMenuItems:
		return l.MenuItems
	case LimitSeats:
		return l.Seats
	default:
		return 0
	}
}

// Check returns a *LimitError when adding one more resource of kind would
// exceed the limit, given used resources already counted.
func (l Limits) Check(kind LimitKind, used int64) error {
	max := l.Max(kind)
	if max == Unlimited {
		return nil
	}
	if used >= int64(max) {
		return &LimitError{Kind: kind, Max: max}
	}
	return nil
}
