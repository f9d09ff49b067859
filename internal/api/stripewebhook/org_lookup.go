package stripewebhooks

import (
	"strconv"

	"restaurant-app/database"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/infra/dbx"
)

func orgIDFromMetadata(md map[string]string) int64 {
	if md == nil {
		return 0
	}
	id, err := strconv.ParseInt(md["org_id"], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// findOrg tries metadata org id, then subscription id, then customer id.
// A nil org with nil error means nothing matched.
func findOrg(orgID int64, subscriptionID, customerID string) (*orgs.Organization, error) {
	var org orgs.Organization
	try := func(query string, arg any) (bool, error) {
		err := database.DB.Preload("Plan").Where(query, arg).First(&org).Error
		if dbx.IsNotFound(err) {
			return false, nil
		}
		return err == nil, err
	}

	if orgID != 0 {
		if ok, err := try("id = ?", orgID); ok || err != nil {
			return &org, err
		}
	}
	if subscriptionID != "" {
		if ok, err := try("subscription_id = ?", subscriptionID); ok || err != nil {
			return &org, err
		}
	}
	if customerID != "" {
		if ok, err := try("stripe_customer_id = ?", customerID); ok || err != nil {
			return &org, err
		}
	}
	return nil, nil
}
