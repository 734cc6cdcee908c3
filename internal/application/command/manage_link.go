package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LINK MANAGEMENT COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// LinkPlatformCommand connects a student to a platform handle. Linking does
// not verify the handle remotely; the first sync does that.
type LinkPlatformCommand struct {
	StudentID string
	Platform  platform.Name
	Handle    platform.Handle
}

// UpdateHandleCommand changes the stored handle for an existing link. The
// stale snapshot stays in place until the next sync overwrites it.
type UpdateHandleCommand struct {
	StudentID string
	Platform  platform.Name
	Handle    platform.Handle
}

// UnlinkPlatformCommand removes a link and its derived score.
type UnlinkPlatformCommand struct {
	StudentID string
	Platform  platform.Name
}

// LinkHandler handles link management commands.
type LinkHandler struct {
	studentRepo  student.Repository
	platformRepo platform.PlatformRepository
	linkRepo     platform.LinkRepository
	invalidator  CacheInvalidator
	logger       *logger.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(
	studentRepo student.Repository,
	platformRepo platform.PlatformRepository,
	linkRepo platform.LinkRepository,
	invalidator CacheInvalidator,
	log *logger.Logger,
) *LinkHandler {
	if log == nil {
		log = logger.Default()
	}
	return &LinkHandler{
		studentRepo:  studentRepo,
		platformRepo: platformRepo,
		linkRepo:     linkRepo,
		invalidator:  invalidator,
		logger:       log.With(logger.Component("links")),
	}
}

// Link connects a student to a platform handle.
func (h *LinkHandler) Link(ctx context.Context, cmd LinkPlatformCommand) (*platform.Link, error) {
	// Both sides must exist before a link is allowed.
	if _, err := h.studentRepo.GetByID(ctx, cmd.StudentID); err != nil {
		return nil, err
	}
	plat, err := h.platformRepo.GetByName(ctx, cmd.Platform)
	if err != nil {
		return nil, err
	}

	link, err := platform.NewLink(uuid.NewString(), cmd.StudentID, plat.ID, cmd.Handle)
	if err != nil {
		return nil, err
	}

	if err := h.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	h.logger.Info("platform linked",
		logger.StudentID(cmd.StudentID),
		logger.PlatformName(string(plat.Name)),
		logger.HandleName(cmd.Handle.String()))

	return link, nil
}

// UpdateHandle changes the handle on an existing link.
func (h *LinkHandler) UpdateHandle(ctx context.Context, cmd UpdateHandleCommand) error {
	if !cmd.Handle.IsValid() {
		return shared.NewDomainError("platform", "UpdateHandle", shared.ErrValidation,
			"invalid handle: "+cmd.Handle.String())
	}

	plat, err := h.platformRepo.GetByName(ctx, cmd.Platform)
	if err != nil {
		return err
	}

	link, err := h.linkRepo.GetByStudentAndPlatform(ctx, cmd.StudentID, plat.ID)
	if err != nil {
		return err
	}

	if err := h.linkRepo.UpdateHandle(ctx, link.ID, cmd.Handle); err != nil {
		return err
	}

	h.invalidate(ctx, cmd.StudentID)
	return nil
}

// Unlink removes a link and its derived score.
func (h *LinkHandler) Unlink(ctx context.Context, cmd UnlinkPlatformCommand) error {
	plat, err := h.platformRepo.GetByName(ctx, cmd.Platform)
	if err != nil {
		return err
	}

	link, err := h.linkRepo.GetByStudentAndPlatform(ctx, cmd.StudentID, plat.ID)
	if err != nil {
		return err
	}

	if err := h.linkRepo.Delete(ctx, link.ID); err != nil {
		return err
	}

	h.invalidate(ctx, cmd.StudentID)
	h.logger.Info("platform unlinked",
		logger.StudentID(cmd.StudentID),
		logger.PlatformName(string(plat.Name)))
	return nil
}

func (h *LinkHandler) invalidate(ctx context.Context, studentID string) {
	if h.invalidator == nil {
		return
	}
	if err := h.invalidator.InvalidateStudent(ctx, studentID); err != nil {
		h.logger.Warn("cache invalidation failed", logger.StudentID(studentID), logger.Err(err))
	}
}
