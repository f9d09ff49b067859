package orgs

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleWaiter  Role = "waiter"
	RoleKitchen Role = "kitchen"
)

type Permission string

const (
	PermOrgView        Permission = "org.view"
	PermOrgManage      Permission = "org.manage"
	PermOrgDelete      Permission = "org.delete"
	PermBillingManage  Permission = "billing.manage"
	PermMembersView    Permission = "members.view"
	PermMembersManage  Permission = "members.manage"
	PermMenuView       Permission = "menu.view"
	PermMenuManage     Permission = "menu.manage"
	PermTablesView     Permission = "tables.view"
	PermTablesManage   Permission = "tables.manage"
	PermOrdersView     Permission = "orders.view"
	PermOrdersManage   Permission = "orders.manage"
	PermKitchenView    Permission = "kitchen.view"
	PermPaymentsManage Permission = "payments.manage"
	PermReportsView    Permission = "reports.view"
)

var rolePermissions = map[Role][]Permission{
	RoleManager: {
		PermOrgView, PermOrgManage, PermMembersView, PermMembersManage,
		PermMenuView, PermMenuManage, PermTablesView, PermTablesManage,
		PermOrdersView, PermOrdersManage, PermKitchenView, PermPaymentsManage,
		PermReportsView,
	},
	RoleWaiter: {
		PermOrgView, PermMembersView, PermMenuView, PermTablesView,
		PermOrdersView, PermOrdersManage, PermPaymentsManage,
	},
	RoleKitchen: {
		PermOrgView, PermMenuView, PermOrdersView, PermKitchenView,
	},
}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleWaiter, RoleKitchen:
		return true
	}
	return false
}

// Can reports whether role grants perm. Owners can do everything.
func Can(role Role, perm Permission) bool {
	if role == RoleOwner {
		return true
	}
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// CanAssign reports whether actor may invite someone as, or change someone to, target.
// Nobody assigns owner directly: ownership moves only through a transfer.
func CanAssign(actor, target Role) bool {
	if target == RoleOwner || !target.Valid() {
		return false
	}
	switch actor {
	case RoleOwner:
		return true
	case RoleManager:
		return target == RoleWaiter || target == RoleKitchen
	default:
		return false
	}
}

// CanManageMember reports whether actor may change or remove a member holding target.
func CanManageMember(actor, target Role) bool {
	if target == RoleOwner {
		return false
	}
	switch actor {
	case RoleOwner:
		return true
	case RoleManager:
		return target == RoleWaiter || target == RoleKitchen
	default:
		return false
	}
}
