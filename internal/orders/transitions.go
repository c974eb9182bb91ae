package orders

import (
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
)

var supplierTargets = []enums.OrderStatus{
	enums.OrderStatusPlaced,
	enums.OrderStatusConfirmed,
	enums.OrderStatusSeparated,
	enums.OrderStatusShipped,
	enums.OrderStatusDelivered,
	enums.OrderStatusCancelled,
	enums.OrderStatusRejected,
}

// transitionTable is the single source of legal status changes, keyed by the
// acting organization type and the order's current status. Missing entries
// allow nothing.
var transitionTable = buildTransitionTable()

func buildTransitionTable() map[enums.OrganizationType]map[enums.OrderStatus][]enums.OrderStatus {
	table := map[enums.OrganizationType]map[enums.OrderStatus][]enums.OrderStatus{
		enums.OrganizationTypeStore: {
			enums.OrderStatusPlaced:    {enums.OrderStatusCancelled},
			enums.OrderStatusConfirmed: {enums.OrderStatusCancelled},
			enums.OrderStatusSeparated: {enums.OrderStatusCancelled},
		},
		enums.OrganizationTypeSupplier: {},
	}

	nonTerminal := []enums.OrderStatus{
		enums.OrderStatusDraft,
		enums.OrderStatusPlaced,
		enums.OrderStatusConfirmed,
		enums.OrderStatusSeparated,
		enums.OrderStatusShipped,
	}
	for _, current := range nonTerminal {
		targets := make([]enums.OrderStatus, 0, len(supplierTargets))
		for _, target := range supplierTargets {
			if target != current {
				targets = append(targets, target)
			}
		}
		table[enums.OrganizationTypeSupplier][current] = targets
	}
	return table
}

// AllowedTargets lists the statuses role may move an order to from current.
func AllowedTargets(role enums.OrganizationType, current enums.OrderStatus) []enums.OrderStatus {
	if current.IsTerminal() {
		return nil
	}
	targets := transitionTable[role][current]
	out := make([]enums.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether role may move an order from current to target.
func CanTransition(role enums.OrganizationType, current, target enums.OrderStatus) bool {
	for _, allowed := range AllowedTargets(role, current) {
		if allowed == target {
			return true
		}
	}
	return false
}

// ValidateTransition returns INVALID_TRANSITION with the attempted and current
// status when the triple is not in the table.
func ValidateTransition(role enums.OrganizationType, current, target enums.OrderStatus) error {
	if CanTransition(role, current, target) {
		return nil
	}
	allowed := AllowedTargets(role, current)
	names := make([]string, 0, len(allowed))
	for _, status := range allowed {
		names = append(names, status.String())
	}
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, "status transition not allowed").
		WithDetails(map[string]any{
			"current_status": current.String(),
			"target_status":  target.String(),
			"role":           string(role),
			"allowed":        names,
		})
}
