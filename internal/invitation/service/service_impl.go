package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	"github.com/parceltrail/parceltrail/internal/auth/password"
	"github.com/parceltrail/parceltrail/internal/config"
	"github.com/parceltrail/parceltrail/internal/db"
	"github.com/parceltrail/parceltrail/internal/invitation/domain"
	"github.com/parceltrail/parceltrail/internal/observability/metrics"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
	orgdomain "github.com/parceltrail/parceltrail/internal/organization/domain"
	"github.com/parceltrail/parceltrail/internal/providers/email"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type serviceImpl struct {
	log      *zap.Logger
	db       *gorm.DB
	repo     domain.Repository
	authRepo authdomain.Repository
	orgRepo  orgdomain.Repository
	provider email.Provider
	genID    *snowflake.Node
	metrics  *metrics.Metrics
	baseURL  string
}

func New(
	log *zap.Logger,
	conn *gorm.DB,
	repo domain.Repository,
	authRepo authdomain.Repository,
	orgRepo orgdomain.Repository,
	provider email.Provider,
	genID *snowflake.Node,
	m *metrics.Metrics,
	cfg config.Config,
) domain.Service {
	return &serviceImpl{
		log:      log.Named("invitation.service"),
		db:       conn,
		repo:     repo,
		authRepo: authRepo,
		orgRepo:  orgRepo,
		provider: provider,
		genID:    genID,
		metrics:  m,
		baseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (s *serviceImpl) Create(ctx context.Context, identity orgcontext.Identity, req domain.CreateInvitationRequest) (*domain.InvitationResult, error) {
	address, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, authdomain.ErrInvalidEmail
	}
	if !orgcontext.ValidRole(req.Role) {
		return nil, authdomain.ErrInvalidRole
	}

	// Existing members of this organization cannot be invited again.
	if user, err := s.authRepo.FindByEmail(ctx, address); err == nil {
		if user.OrgID == identity.OrgID {
			return nil, domain.ErrAlreadyMember
		}
	} else if !errors.Is(err, authdomain.ErrUserNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	pending, err := s.repo.HasPending(ctx, identity.OrgID, address, now)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, domain.ErrInviteExists
	}

	invitation := &domain.Invitation{
		ID:        s.genID.Generate(),
		OrgID:     identity.OrgID,
		Email:     address,
		Role:      req.Role,
		InvitedBy: identity.UserID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(domain.TTL),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, invitation); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrInviteExists
		}
		return nil, err
	}

	notification := s.notify(ctx, identity, invitation)
	s.metrics.RecordInviteSent(ctx, identity.OrgID.String(), notification.Delivered)

	return &domain.InvitationResult{
		Invitation:   invitation.View(now),
		Notification: notification,
	}, nil
}

func (s *serviceImpl) List(ctx context.Context, identity orgcontext.Identity) ([]domain.InvitationView, error) {
	invitations, err := s.repo.ListByOrg(ctx, identity.OrgID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	views := make([]domain.InvitationView, 0, len(invitations))
	for i := range invitations {
		views = append(views, invitations[i].View(now))
	}
	return views, nil
}

func (s *serviceImpl) Accept(ctx context.Context, token string, req domain.AcceptInvitationRequest) (*domain.AcceptResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInviteInvalid
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, authdomain.ErrPasswordTooShort
	}

	invitation, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInviteNotFound) {
			return nil, domain.ErrInviteInvalid
		}
		return nil, err
	}

	now := time.Now().UTC()
	switch invitation.Status(now) {
	case domain.StatusAccepted:
		return nil, domain.ErrInviteAccepted
	case domain.StatusExpired:
		return nil, domain.ErrInviteExpired
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	invitedBy := invitation.InvitedBy
	user := &authdomain.User{
		ID:           s.genID.Generate(),
		Email:        invitation.Email,
		PasswordHash: &hashed,
		OrgID:        invitation.OrgID,
		Role:         invitation.Role,
		InvitedBy:    &invitedBy,
	}

	// The conditional accepted-at update and the member insert commit
	// together, so a token can never produce two users.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accepted, err := s.repo.WithTx(tx).MarkAccepted(ctx, invitation.ID, now)
		if err != nil {
			return err
		}
		if !accepted {
			return domain.ErrInviteAccepted
		}
		if err := s.authRepo.WithTx(tx).Create(ctx, user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return authdomain.ErrEmailExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.welcome(ctx, user)

	return &domain.AcceptResult{User: user.View()}, nil
}

func (s *serviceImpl) Resend(ctx context.Context, identity orgcontext.Identity, id snowflake.ID) (*domain.InvitationResult, error) {
	invitation, err := s.repo.FindByID(ctx, identity.OrgID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch invitation.Status(now) {
	case domain.StatusAccepted:
		return nil, domain.ErrInviteAccepted
	case domain.StatusExpired:
		// Expired invitations must be recreated, not resent.
		return nil, domain.ErrInviteExpired
	}

	notification := s.notify(ctx, identity, invitation)
	s.metrics.RecordInviteSent(ctx, identity.OrgID.String(), notification.Delivered)

	return &domain.InvitationResult{
		Invitation:   invitation.View(now),
		Notification: notification,
	}, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, identity orgcontext.Identity, id snowflake.ID) error {
	invitation, err := s.repo.FindByID(ctx, identity.OrgID, id)
	if err != nil {
		return err
	}
	if invitation.AcceptedAt != nil {
		return domain.ErrInviteAccepted
	}
	return s.repo.Delete(ctx, invitation.ID)
}

// notify sends the invite email. Failures are reported back to the caller
// as a soft field and never abort the invitation.
func (s *serviceImpl) notify(ctx context.Context, identity orgcontext.Identity, invitation *domain.Invitation) domain.NotificationResult {
	result := domain.NotificationResult{Attempted: true}

	orgName := "your team"
	if org, err := s.orgRepo.FindByID(ctx, invitation.OrgID); err == nil {
		orgName = org.Name
	}
	inviterEmail := ""
	if inviter, err := s.authRepo.FindByID(ctx, identity.UserID); err == nil {
		inviterEmail = inviter.Email
	}

	err := s.provider.SendTemplate(ctx, []string{invitation.Email}, "invite_member", map[string]any{
		"org_name":      orgName,
		"inviter_email": inviterEmail,
		"role":          invitation.Role,
		"accept_url":    fmt.Sprintf("%s/invitations/%s/accept", s.baseURL, invitation.Token),
		"expires_at":    invitation.ExpiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.log.Warn("invite notification failed",
			zap.String("invitation_id", invitation.ID.String()),
			zap.Error(err),
		)
		result.Error = err.Error()
		return result
	}

	result.Delivered = true
	return result
}

func (s *serviceImpl) welcome(ctx context.Context, user *authdomain.User) {
	orgName := ""
	if org, err := s.orgRepo.FindByID(ctx, user.OrgID); err == nil {
		orgName = org.Name
	}
	err := s.provider.SendTemplate(ctx, []string{user.Email}, "welcome", map[string]any{
		"org_name":  orgName,
		"login_url": s.baseURL + "/auth/login",
	})
	if err != nil {
		s.log.Warn("welcome notification failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

func normalizeEmail(raw string) (string, error) {
	address := strings.ToLower(strings.TrimSpace(raw))
	if address == "" {
		return "", errors.New("empty email")
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return "", err
	}
	return address, nil
}
