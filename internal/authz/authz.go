// Package authz holds the role/ownership decision function.  Keeping the
// decision in one pure function instead of scattered role conditionals
// lets the whole access table be tested in a single place.
package authz

import "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"

// Decision is the outcome of an authorization check.
type Decision int

const (
    Deny Decision = iota
    Allow
)

// CanAccess decides whether the caller may act on a resource owned by
// ownerID.  Allowed when the caller's role is one of the override roles
// (typically staff/admin) or when the caller owns the resource.  Unknown
// roles are always denied.
func CanAccess(caller model.Identity, ownerID uint64, overrides ...model.Role) Decision {
    if !caller.Role.Valid() {
        return Deny
    }
    for _, r := range overrides {
        if caller.Role == r {
            return Allow
        }
    }
    if caller.ID == ownerID {
        return Allow
    }
    return Deny
}

// CanManage decides whether the caller may perform a role-gated action
// that has no owning resource, such as an order status transition.
func CanManage(caller model.Identity, allowed ...model.Role) Decision {
    if !caller.Role.Valid() {
        return Deny
    }
    for _, r := range allowed {
        if caller.Role == r {
            return Allow
        }
    }
    return Deny
}
