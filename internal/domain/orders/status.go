package orders

import (
	"errors"
	"slices"

	"restaurant-app/internal/domain/orgs"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotPaid           = errors.New("order must be fully paid before completing")
	ErrRoleTransition    = errors.New("role not allowed to make this status change")
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed},
	StatusServed:    {StatusCompleted},
}

// kitchen staff only move tickets through the line
var kitchenTransitions = map[Status]Status{
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusReady,
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusServed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// CheckTransition validates moving o to next on behalf of role.
func CheckTransition(o *Order, next Status, role orgs.Role) error {
	if !CanTransition(o.Status, next) {
		return ErrInvalidTransition
	}
	if role == orgs.RoleKitchen {
		if kitchenTransitions[o.Status] != next {
			return ErrRoleTransition
		}
	} else if !orgs.Can(role, orgs.PermOrdersManage) {
		return ErrRoleTransition
	}
	if next == StatusCompleted && PaymentStatusFor(o.TotalCents, o.PaidCents) != PaymentPaid {
		return ErrNotPaid
	}
	return nil
}

// KitchenStatuses are shown on the kitchen display.
var KitchenStatuses = []Status{StatusConfirmed, StatusPreparing, StatusReady}

func acceptsItems(s Status) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusPreparing
}
