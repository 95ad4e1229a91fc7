package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/domain/repository"
	"pulsechat/internal/domain/service"
	"pulsechat/pkg/errors"
)

// IdentityUseCase maps external authenticated principals onto internal user
// records. Profile data arrives through identity-provider webhook events;
// every other component resolves users through here.
type IdentityUseCase struct {
	userRepo    repository.UserRepository
	blobStorage service.BlobStorageService
}

func NewIdentityUseCase(userRepo repository.UserRepository, blobStorage service.BlobStorageService) *IdentityUseCase {
	return &IdentityUseCase{
		userRepo:    userRepo,
		blobStorage: blobStorage,
	}
}

type SyncUserInput struct {
	ExternalID  string
	Email       string
	DisplayName string
	Username    string
	PhoneNumber string
	ImageRef    string
}

// SyncUser upserts a profile from a user.created/user.updated event.
// Creation rejects duplicate username, email, and external ID with Conflict;
// updates merge the incoming profile fields.
func (uc *IdentityUseCase) SyncUser(ctx context.Context, input SyncUserInput) (*entity.User, error) {
	existing, err := uc.userRepo.GetByExternalID(ctx, input.ExternalID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		log.Printf("SyncUser Error: Failed to look up external ID %s: %v", input.ExternalID, err)
		return nil, err
	}

	if existing != nil {
		existing.DisplayName = input.DisplayName
		existing.Email = input.Email
		if input.Username != "" {
			existing.Username = input.Username
		}
		if input.PhoneNumber != "" {
			existing.PhoneNumber = input.PhoneNumber
		}
		if input.ImageRef != "" {
			existing.ImageRef = input.ImageRef
		}

		if err := uc.userRepo.Update(ctx, existing); err != nil {
			log.Printf("SyncUser Error: Failed to update user %s: %v", existing.ID, err)
			return nil, err
		}
		return existing, nil
	}

	username := input.Username
	if username == "" {
		username = input.DisplayName
	}

	if username != "" {
		if _, err := uc.userRepo.GetByUsername(ctx, username); err == nil {
			return nil, errors.Conflict("Username already exists")
		} else if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
	}

	if _, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, errors.Conflict("Email already exists")
	} else if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	user := &entity.User{
		ExternalID:  input.ExternalID,
		DisplayName: input.DisplayName,
		Email:       input.Email,
		Username:    username,
		PhoneNumber: input.PhoneNumber,
		ImageRef:    input.ImageRef,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		log.Printf("SyncUser Error: Failed to create user for external ID %s: %v", input.ExternalID, err)
		return nil, err
	}

	return user, nil
}

// DeleteUser acknowledges a user.deleted event. Record removal is not
// implemented upstream; the event is accepted so the provider stops
// retrying.
func (uc *IdentityUseCase) DeleteUser(ctx context.Context, externalID string) error {
	log.Printf("DeleteUser: ignoring user.deleted for external ID %s", externalID)
	return nil
}

// ResolveExternal maps an authenticated principal to the internal user.
// Unauthorized when no record exists for the principal.
func (uc *IdentityUseCase) ResolveExternal(ctx context.Context, externalID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.Unauthorized("No account for authenticated principal", err)
		}
		return nil, err
	}
	return user, nil
}

func (uc *IdentityUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// UpdatePresence stamps the user's online flag and last-seen time.
func (uc *IdentityUseCase) UpdatePresence(ctx context.Context, userID string, isOnline bool) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	user.IsOnline = isOnline
	user.LastSeenAt = time.Now()

	return uc.userRepo.Update(ctx, user)
}

// ListFriends resolves the user's friend IDs to profile summaries.
func (uc *IdentityUseCase) ListFriends(ctx context.Context, user *entity.User) ([]*entity.UserSummary, error) {
	friends, err := uc.userRepo.GetByIDs(ctx, user.FriendIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]*entity.UserSummary, 0, len(friends))
	for _, friend := range friends {
		summaries = append(summaries, uc.Summarize(ctx, friend))
	}
	return summaries, nil
}

// Summarize builds the embeddable profile shape, resolving the image ref to
// a fetchable URL when it points into the blob store.
func (uc *IdentityUseCase) Summarize(ctx context.Context, user *entity.User) *entity.UserSummary {
	summary := user.Summary()
	summary.ImageURL = uc.resolveImageRef(ctx, user.ImageRef)
	return summary
}

func (uc *IdentityUseCase) resolveImageRef(ctx context.Context, imageRef string) string {
	if imageRef == "" {
		return ""
	}
	// Provider-hosted avatars arrive as absolute URLs and pass through.
	if strings.HasPrefix(imageRef, "http") {
		return imageRef
	}

	url, err := uc.blobStorage.Resolve(ctx, imageRef)
	if err != nil {
		log.Printf("Summarize: failed to resolve image ref %s: %v", imageRef, err)
		return ""
	}
	return url
}
