package ledger

import (
	"github.com/LeJamon/goMIXR/internal/core/address"
)

//go:generate mockgen -destination=mocks/mock_authorizer.go -package=mocks github.com/LeJamon/goMIXR/internal/core/ledger Authorizer

// Action names a governed mutation.
type Action string

const (
	ActionRegisterAsset        Action = "register_asset"
	ActionSetTargetProportions Action = "set_target_proportions"
	ActionSetBaseFee           Action = "set_base_fee"
	ActionSetMinimumFee        Action = "set_minimum_fee"
	ActionSetDeviationCeiling  Action = "set_deviation_ceiling"
	ActionSetMinimumNomination Action = "set_minimum_nomination_stake"
	ActionSetRewardCeiling     Action = "set_reward_ceiling"
)

// Authorizer decides whether caller may perform action. It is the only view
// the engine has of the governance whitelist.
type Authorizer interface {
	Authorized(caller address.Address, action Action) bool
}

// Role is a whitelist role.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleGovernor    Role = "governor"
	RoleStakeholder Role = "stakeholder"
)

// roleActions lists what each non-owner role may do. The owner may do
// everything.
var roleActions = map[Role][]Action{
	RoleGovernor: {
		ActionSetTargetProportions,
		ActionSetBaseFee,
		ActionSetMinimumFee,
		ActionSetDeviationCeiling,
	},
	RoleStakeholder: {
		ActionSetMinimumNomination,
		ActionSetRewardCeiling,
	},
}

// Whitelist is a static role-based Authorizer.
type Whitelist struct {
	roles map[address.Address]map[Role]bool
}

// NewWhitelist returns an empty whitelist.
func NewWhitelist() *Whitelist {
	return &Whitelist{roles: make(map[address.Address]map[Role]bool)}
}

// Grant gives role to addr.
func (w *Whitelist) Grant(addr address.Address, role Role) {
	if w.roles[addr] == nil {
		w.roles[addr] = make(map[Role]bool)
	}
	w.roles[addr][role] = true
}

// Revoke removes role from addr.
func (w *Whitelist) Revoke(addr address.Address, role Role) {
	delete(w.roles[addr], role)
}

// HasRole reports whether addr holds role.
func (w *Whitelist) HasRole(addr address.Address, role Role) bool {
	return w.roles[addr][role]
}

// Authorized implements Authorizer.
func (w *Whitelist) Authorized(caller address.Address, action Action) bool {
	roles := w.roles[caller]
	if roles[RoleOwner] {
		return true
	}
	for role := range roles {
		for _, a := range roleActions[role] {
			if a == action {
				return true
			}
		}
	}
	return false
}
