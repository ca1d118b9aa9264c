// Package permissions maps a user's role to the read/write rule document
// enforced by the sync backend.
package permissions

import (
	"strings"

	"github.com/iudanet/posauth/pkg/api"
)

// Class is the policy bucket a role falls into.
type Class int

const (
	// Unclassified roles get nothing.
	Unclassified Class = iota
	// Privileged roles read and write everything.
	Privileged
	// Restricted roles read the catalog and write only their own orders.
	Restricted
)

// Known roles.
const (
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// Collections referenced by the restricted rules.
const (
	CollectionItems  = "items"
	CollectionOrders = "orders"
)

// Every new role has to be added here deliberately; anything absent is Unclassified.
var roleClasses = map[string]Class{
	RoleManager: Privileged,
	RoleCashier: Restricted,
}

// Classify returns the class for role. Matching is exact.
func Classify(role string) Class {
	if c, ok := roleClasses[role]; ok {
		return c
	}
	return Unclassified
}

// Known reports whether role has an explicit classification.
func Known(role string) bool {
	_, ok := roleClasses[role]
	return ok
}

// For builds the permission document for role and subject.
func For(role, subject string) api.Permissions {
	switch Classify(role) {
	case Privileged:
		return api.Permissions{
			Read:  everything(),
			Write: everything(),
		}
	case Restricted:
		return api.Permissions{
			Read: api.Rules{
				QueriesByCollection: map[string][]string{
					CollectionItems:  {"true"},
					CollectionOrders: {"true"},
				},
			},
			Write: api.Rules{
				QueriesByCollection: map[string][]string{
					CollectionOrders: {CreatedByQuery(subject)},
				},
			},
		}
	default:
		return api.Permissions{
			Read:  nothing(),
			Write: nothing(),
		}
	}
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// CreatedByQuery returns the predicate matching documents created by subject.
func CreatedByQuery(subject string) string {
	return "_id.createdBy == '" + literalEscaper.Replace(subject) + "'"
}

func everything() api.Rules {
	return api.Rules{Everything: true, QueriesByCollection: map[string][]string{}}
}

func nothing() api.Rules {
	return api.Rules{QueriesByCollection: map[string][]string{}}
}
