package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/domain/repository"
	"pulsechat/internal/domain/service"
	"pulsechat/internal/infrastructure/ratelimit"
	"pulsechat/pkg/errors"
	"pulsechat/pkg/logger"
	"pulsechat/pkg/metrics"
)

type StoryUseCase struct {
	storyRepo   repository.StoryRepository
	userRepo    repository.UserRepository
	blobStorage service.BlobStorageService
	identity    *IdentityUseCase
	publisher   EventPublisher
	rateLimiter *ratelimit.RateLimiter
	ttl         time.Duration
}

func NewStoryUseCase(
	storyRepo repository.StoryRepository,
	userRepo repository.UserRepository,
	blobStorage service.BlobStorageService,
	identity *IdentityUseCase,
	publisher EventPublisher,
	rateLimiter *ratelimit.RateLimiter,
	ttl time.Duration,
) *StoryUseCase {
	return &StoryUseCase{
		storyRepo:   storyRepo,
		userRepo:    userRepo,
		blobStorage: blobStorage,
		identity:    identity,
		publisher:   publisher,
		rateLimiter: rateLimiter,
		ttl:         ttl,
	}
}

type CreateStoryInput struct {
	Kind  string
	Media entity.MediaAttachment
}

type StoryResponse struct {
	*entity.Story
	Author *entity.UserSummary `json:"author,omitempty"`
}

// CreateStory appends an ephemeral post with the author's next sequence
// number and a TTL-based expiry.
func (uc *StoryUseCase) CreateStory(ctx context.Context, authorID string, input CreateStoryInput) (*entity.Story, error) {
	allowed, waitTime := uc.rateLimiter.Allow(authorID, "create_story")
	if !allowed {
		log.Printf("CreateStory Rate Limited: User %s must wait %v", authorID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before posting another story")
	}

	if input.Kind != entity.StoryKindImage && input.Kind != entity.StoryKindVideo {
		return nil, errors.BadRequest("Story kind must be image or video", nil)
	}
	if input.Media.StorageRef == "" {
		return nil, errors.BadRequest("Story media is missing its storage ref", nil)
	}

	author, err := uc.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	story := &entity.Story{
		AuthorID:     authorID,
		Kind:         input.Kind,
		Media:        input.Media,
		CreatedAt:    now,
		ExpiresAt:    now.Add(uc.ttl),
		Viewers:      []string{},
		IsActive:     true,
		StoryGroupID: fmt.Sprintf("%s_%d", authorID, now.UnixMilli()),
	}

	if err := uc.storyRepo.CreateWithNextSequence(ctx, story); err != nil {
		return nil, err
	}

	metrics.StoriesCreated.Inc()

	payload, _ := json.Marshal(map[string]interface{}{
		"type":        "story_created",
		"story_id":    story.ID,
		"author_id":   authorID,
		"author_name": author.DisplayName,
	})
	for _, friendID := range author.FriendIDs {
		uc.publisher.SendToUser(friendID, payload)
	}

	return story, nil
}

// ListVisibleStories groups unexpired stories by author, sorted by sequence
// ascending within each author. Targets default to the requester plus their
// friend list.
func (uc *StoryUseCase) ListVisibleStories(ctx context.Context, requester *entity.User, targetUserIDs []string) (map[string][]*StoryResponse, error) {
	targets := targetUserIDs
	if len(targets) == 0 {
		targets = append([]string{requester.ID}, requester.FriendIDs...)
	}
	targets = dedupeIDs(targets)

	now := time.Now()
	grouped := make(map[string][]*StoryResponse)

	for _, authorID := range targets {
		stories, err := uc.storyRepo.ListActiveByAuthor(ctx, authorID, now)
		if err != nil {
			return nil, err
		}
		if len(stories) == 0 {
			continue
		}

		var author *entity.UserSummary
		if user, err := uc.userRepo.GetByID(ctx, authorID); err == nil {
			author = uc.identity.Summarize(ctx, user)
		}

		responses := make([]*StoryResponse, 0, len(stories))
		for _, story := range stories {
			// Readers filter on expiry themselves; the sweep may lag.
			if story.Expired(now) {
				continue
			}

			url, err := uc.blobStorage.Resolve(ctx, story.Media.StorageRef)
			if err != nil {
				log.Printf("ListVisibleStories: failed to resolve media %s: %v", story.Media.StorageRef, err)
			} else {
				story.Media.URL = url
			}

			responses = append(responses, &StoryResponse{
				Story:  story,
				Author: author,
			})
		}

		if len(responses) == 0 {
			continue
		}

		sort.Slice(responses, func(i, j int) bool {
			return responses[i].Sequence < responses[j].Sequence
		})
		grouped[authorID] = responses
	}

	return grouped, nil
}

// MarkViewed appends the viewer to the story exactly once. Idempotent: a
// repeat view is a no-op, regardless of the story's active flag.
func (uc *StoryUseCase) MarkViewed(ctx context.Context, viewerID, storyID string) error {
	story, err := uc.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return err
	}

	if story.ViewedBy(viewerID) {
		return nil
	}

	return uc.storyRepo.AddViewer(ctx, storyID, viewerID)
}

// ExpireStories removes every story past its expiry, releasing the blob
// before the record. Idempotent and safe to run concurrently with reads. A
// story whose blob cannot be released is left for the next sweep.
func (uc *StoryUseCase) ExpireStories(ctx context.Context) error {
	now := time.Now()

	expired, err := uc.storyRepo.ListExpired(ctx, now)
	if err != nil {
		return err
	}

	deleted := 0
	for _, story := range expired {
		if story.Media.StorageRef != "" {
			if err := uc.blobStorage.Delete(ctx, story.Media.StorageRef); err != nil {
				logger.Warn("ExpireStories: failed to release blob %s for story %s: %v", story.Media.StorageRef, story.ID, err)
				continue
			}
		}

		if err := uc.storyRepo.Delete(ctx, story.ID); err != nil {
			logger.Warn("ExpireStories: failed to delete story %s: %v", story.ID, err)
			continue
		}
		deleted++
	}

	metrics.StoriesExpired.Add(float64(deleted))
	logger.Info("Deleted %d expired stories", deleted)
	return nil
}
