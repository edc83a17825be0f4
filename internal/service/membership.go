package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
	"github.com/immxrtalbeast/research_hub/internal/repository"
)

// MembershipService consults the persisted project/collaborator relation.
// Read-only and idempotent; the gateway re-resolves on every join and never
// trusts a role cached across reconnects.
type MembershipService struct {
	projects repository.ProjectRepository
	log      *slog.Logger
}

func NewMembershipService(projects repository.ProjectRepository, log *slog.Logger) *MembershipService {
	if log == nil {
		log = slog.Default()
	}
	return &MembershipService{projects: projects, log: log}
}

func (s *MembershipService) ResolveRole(ctx context.Context, userID, projectID uuid.UUID) (domain.Role, bool, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	if project.OwnerID == userID {
		return domain.RoleOwner, true, nil
	}

	role, err := s.projects.CollaboratorRole(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCollaboratorNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	if !role.Valid() {
		s.log.Warn("unknown collaborator role, downgrading to viewer",
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()),
			slog.String("role", string(role)),
		)
		role = domain.RoleViewer
	}

	return role, true, nil
}
