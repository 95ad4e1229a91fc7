package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/domain/repository"
	"pulsechat/pkg/errors"
	"pulsechat/pkg/logger"
)

type firestoreStoryRepository struct {
	client *firestore.Client
}

func NewFirestoreStoryRepository(client *firestore.Client) repository.StoryRepository {
	return &firestoreStoryRepository{
		client: client,
	}
}

// CreateWithNextSequence reads the author's max sequence and inserts inside
// one transaction, keeping per-author sequences strictly increasing even
// when posts race.
func (r *firestoreStoryRepository) CreateWithNextSequence(ctx context.Context, story *entity.Story) error {
	if story.ID == "" {
		story.ID = uuid.New().String()
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := r.client.Collection("stories").
			Where("authorId", "==", story.AuthorID).
			OrderBy("sequence", firestore.Desc).
			Limit(1)

		var maxSequence int64
		doc, err := tx.Documents(query).Next()
		if err == nil {
			var latest entity.Story
			if err := doc.DataTo(&latest); err != nil {
				return err
			}
			maxSequence = latest.Sequence
		} else if err != iterator.Done {
			return err
		}

		story.Sequence = maxSequence + 1
		return tx.Set(r.client.Collection("stories").Doc(story.ID), story)
	})
	if err != nil {
		logger.Error("Failed to create story for author %s: %v", story.AuthorID, err)
		return errors.Internal("Failed to create story", err)
	}

	return nil
}

func (r *firestoreStoryRepository) GetByID(ctx context.Context, id string) (*entity.Story, error) {
	doc, err := r.client.Collection("stories").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Story", err)
		}
		return nil, errors.Internal("Failed to get story", err)
	}

	var story entity.Story
	if err := doc.DataTo(&story); err != nil {
		return nil, errors.Internal("Failed to parse story data", err)
	}
	return &story, nil
}

func (r *firestoreStoryRepository) ListActiveByAuthor(ctx context.Context, authorID string, now time.Time) ([]*entity.Story, error) {
	iter := r.client.Collection("stories").
		Where("authorId", "==", authorID).
		Where("expiresAt", ">", now).
		Documents(ctx)

	var stories []*entity.Story
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate stories", err)
		}

		var story entity.Story
		if err := doc.DataTo(&story); err != nil {
			return nil, errors.Internal("Failed to parse story data", err)
		}
		stories = append(stories, &story)
	}

	return stories, nil
}

func (r *firestoreStoryRepository) AddViewer(ctx context.Context, storyID, viewerID string) error {
	ref := r.client.Collection("stories").Doc(storyID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var story entity.Story
		if err := doc.DataTo(&story); err != nil {
			return err
		}
		if story.ViewedBy(viewerID) {
			return nil
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "viewers", Value: append(story.Viewers, viewerID)},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Story", err)
		}
		return errors.Internal("Failed to add story viewer", err)
	}
	return nil
}

func (r *firestoreStoryRepository) ListExpired(ctx context.Context, now time.Time) ([]*entity.Story, error) {
	iter := r.client.Collection("stories").
		Where("expiresAt", "<", now).
		Documents(ctx)

	var stories []*entity.Story
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate expired stories", err)
		}

		var story entity.Story
		if err := doc.DataTo(&story); err != nil {
			return nil, errors.Internal("Failed to parse story data", err)
		}
		stories = append(stories, &story)
	}

	return stories, nil
}

func (r *firestoreStoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("stories").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete story", err)
	}
	return nil
}
