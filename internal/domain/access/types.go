package access

type AccessState string

const (
	AccessTrial   AccessState = "trial"
	AccessFull    AccessState = "full"
	AccessLimited AccessState = "limited"
	AccessLocked  AccessState = "locked"
)

// PublicMode controls whether the customer-facing menu accepts orders.
type PublicMode string

const (
	PublicOrdering PublicMode = "ordering"
	PublicMenuOnly PublicMode = "menu_only"
)
