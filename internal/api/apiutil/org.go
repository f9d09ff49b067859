package apiutil

import (
	"restaurant-app/internal/domain/access"
	"restaurant-app/internal/domain/orgs"

	"github.com/gin-gonic/gin"
)

// Org returns the org loaded by middleware.LoadOrg.
func Org(c *gin.Context) *orgs.Organization {
	v, _ := c.Get(KeyOrg)
	o, _ := v.(*orgs.Organization)
	return o
}

func Membership(c *gin.Context) *orgs.Membership {
	v, _ := c.Get(KeyMembership)
	m, _ := v.(*orgs.Membership)
	return m
}

func Role(c *gin.Context) orgs.Role {
	if m := Membership(c); m != nil {
		return m.Role
	}
	return ""
}

func Policy(c *gin.Context) access.Policy {
	v, _ := c.Get(KeyPolicy)
	p, _ := v.(access.Policy)
	return p
}
