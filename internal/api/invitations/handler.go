package invitations

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"restaurant-app/config"
	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/api/auth"
	"restaurant-app/internal/domain/access"
	"restaurant-app/internal/domain/invitations"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/logger"
	"restaurant-app/internal/infra/mail"
	"restaurant-app/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type InvitationDTO struct {
	invitations.Invitation
	Status invitations.Status `json:"status"`
}

type CreatedResponse struct {
	Invitation InvitationDTO `json:"invitation"`
	// Token is returned only once, at creation or resend.
	Token     string `json:"token"`
	AcceptURL string `json:"accept_url"`
}

func toDTO(inv invitations.Invitation, now time.Time) InvitationDTO {
	return InvitationDTO{Invitation: inv, Status: inv.StatusAt(now)}
}

func acceptURL(token string) string {
	return config.APP_URL + "/invite/" + url.PathEscape(token)
}

// invitationError maps domain errors to statuses.
func invitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, invitations.ErrNotFound):
		apiutil.Error(c, http.StatusNotFound, "Invitation not found")
	case errors.Is(err, invitations.ErrExpired):
		apiutil.Error(c, http.StatusGone, "Invitation has expired")
	case errors.Is(err, invitations.ErrRevoked):
		apiutil.Error(c, http.StatusGone, "Invitation was revoked")
	case errors.Is(err, invitations.ErrAlreadyAccepted):
		apiutil.Error(c, http.StatusConflict, "Invitation was already accepted")
	case errors.Is(err, invitations.ErrAlreadyMember):
		apiutil.Error(c, http.StatusConflict, "User is already a member of this organization")
	case errors.Is(err, invitations.ErrEmailMismatch):
		apiutil.Error(c, http.StatusForbidden, "This invitation was sent to a different email address")
	case errors.Is(err, invitations.ErrSeatLimit):
		metrics.Default.PlanLimitHits.WithLabelValues(string(plans.LimitSeats)).Inc()
		apiutil.Error(c, http.StatusPaymentRequired, "Seat limit reached for the current plan")
	case errors.Is(err, invitations.ErrNotPending):
		apiutil.Error(c, http.StatusConflict, "Invitation is no longer pending")
	case errors.Is(err, invitations.ErrInvalidRole):
		apiutil.Error(c, http.StatusBadRequest, "Invalid role for invitation")
	case errors.Is(err, orgs.ErrForbiddenRole):
		apiutil.Error(c, http.StatusForbidden, "You are not allowed to invite this role")
	default:
		apiutil.ServerError(c, "Failed to process invitation", err)
	}
}

func sendInvitationEmail(c *gin.Context, org *orgs.Organization, inv invitations.Invitation, token string) {
	inviter := "A teammate"
	var u users.User
	if err := database.DB.Select("name", "lastname").First(&u, inv.InvitedByID).Error; err == nil && u.FullName() != "" {
		inviter = u.FullName()
	}

	msg := mail.InvitationMessage(config.SMTP_FROM, inv.Email, org.Name, string(inv.Role), inviter, acceptURL(token))
	if err := mail.Default.SendEmail(c.Request.Context(), msg); err != nil {
		// the invite stays valid; resend is available
		slog.ErrorContext(c.Request.Context(), "Failed to send invitation email", "invitation_id", inv.ID, logger.ErrAttr(err))
	}
}

// POST /orgs/:orgID/invitations
func CreateInvitation(c *gin.Context) {
	org := apiutil.Org(c)
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	var body struct {
		Email string    `json:"email" binding:"required"`
		Role  orgs.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and role are required"})
		return
	}
	if !auth.IsEmailValid(users.NormalizeEmail(body.Email)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	now := time.Now()
	created, err := invitations.Create(database.DB, invitations.CreateInput{
		OrgID:     org.ID,
		Email:     body.Email,
		Role:      body.Role,
		InvitedBy: userID,
		ActorRole: apiutil.Role(c),
		Limits:    apiutil.Policy(c).Limits,
		TTL:       config.INVITATION_TTL,
	}, now)
	if err != nil {
		invitationError(c, err)
		return
	}

	sendInvitationEmail(c, org, created.Invitation, created.RawToken)
	metrics.Default.InvitationsSent.Inc()

	c.JSON(http.StatusCreated, CreatedResponse{
		Invitation: toDTO(created.Invitation, now),
		Token:      created.RawToken,
		AcceptURL:  acceptURL(created.RawToken),
	})
}

// GET /orgs/:orgID/invitations?status=pending|accepted|expired|revoked|all
func ListInvitations(c *gin.Context) {
	org := apiutil.Org(c)

	status := invitations.Status(c.DefaultQuery("status", string(invitations.StatusPending)))
	switch status {
	case invitations.StatusPending, invitations.StatusAccepted, invitations.StatusExpired, invitations.StatusRevoked, "all":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
		return
	}

	now := time.Now()
	list, err := invitations.List(database.DB, org.ID, status, now)
	if err != nil {
		apiutil.ServerError(c, "Failed to load invitations", err)
		return
	}

	out := make([]InvitationDTO, 0, len(list))
	for _, inv := range list {
		out = append(out, toDTO(inv, now))
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /orgs/:orgID/invitations/:id
func RevokeInvitation(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	if err := invitations.Revoke(database.DB, org.ID, id, time.Now()); err != nil {
		invitationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation revoked"})
}

// POST /orgs/:orgID/invitations/:id/resend
func ResendInvitation(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	inv, err := invitations.Get(database.DB, org.ID, id)
	if err != nil {
		invitationError(c, err)
		return
	}
	if !orgs.CanAssign(apiutil.Role(c), inv.Role) {
		invitationError(c, orgs.ErrForbiddenRole)
		return
	}

	now := time.Now()
	created, err := invitations.Resend(database.DB, org.ID, id, config.INVITATION_TTL, now)
	if err != nil {
		invitationError(c, err)
		return
	}

	sendInvitationEmail(c, org, created.Invitation, created.RawToken)
	metrics.Default.InvitationsSent.Inc()

	c.JSON(http.StatusOK, CreatedResponse{
		Invitation: toDTO(created.Invitation, now),
		Token:      created.RawToken,
		AcceptURL:  acceptURL(created.RawToken),
	})
}

// GET /invitations/:token (public)
func PreviewInvitation(c *gin.Context) {
	inv, err := invitations.FindByToken(database.DB, c.Param("token"))
	if err != nil {
		invitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"org_name":   inv.Org.Name,
		"email":      inv.Email,
		"role":       inv.Role,
		"status":     inv.StatusAt(time.Now()),
		"expires_at": inv.ExpiresAt,
	})
}

// POST /invitations/:token/accept
func AcceptInvitation(c *gin.Context) {
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	m, err := invitations.Accept(database.DB, invitations.AcceptInput{
		RawToken:  c.Param("token"),
		User:      user,
		LimitsFor: orgLimits,
	}, time.Now())
	if err != nil {
		invitationError(c, err)
		return
	}

	metrics.Default.InvitationsAccepted.Inc()
	slog.InfoContext(c.Request.Context(), "Invitation accepted", "org_id", m.OrgID, "role", m.Role)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Invitation accepted",
		"membership": m,
	})
}

// orgLimits runs inside the accept transaction.
func orgLimits(tx *gorm.DB, orgID int64) (plans.Limits, error) {
	var org orgs.Organization
	if err := tx.Preload("Plan").First(&org, orgID).Error; err != nil {
		return plans.Limits{}, err
	}
	return access.ComputePolicy(time.Now(), org).Limits, nil
}
