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
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

// Create inserts the user with the unique-field checks and the write in one
// transaction, so racing creates (webhook retries included) cannot slip two
// records past the same username, email, or external ID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	unique := []struct {
		field   string
		value   string
		message string
	}{
		{"externalId", user.ExternalID, "External ID already exists"},
		{"username", user.Username, "Username already exists"},
		{"email", user.Email, "Email already exists"},
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, u := range unique {
			if u.value == "" {
				continue
			}
			query := r.client.Collection("users").Where(u.field, "==", u.value).Limit(1)
			_, err := tx.Documents(query).Next()
			if err == nil {
				return errors.Conflict(u.message)
			}
			if err != iterator.Done {
				return err
			}
		}
		return tx.Set(r.client.Collection("users").Doc(user.ID), user)
	})
	if err != nil {
		if errors.Is(err, "CONFLICT") {
			return err
		}
		return errors.Internal("Failed to create user", err)
	}

	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}

func (r *firestoreUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	users := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *firestoreUserRepository) GetByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	return r.getByField(ctx, "externalId", externalID)
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getByField(ctx, "email", email)
}

func (r *firestoreUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getByField(ctx, "username", username)
}

func (r *firestoreUserRepository) getByField(ctx context.Context, field, value string) (*entity.User, error) {
	query := r.client.Collection("users").Where(field, "==", value).Limit(1)
	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("User", nil)
		}
		return nil, errors.Internal("Failed to query user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to update user", err)
	}

	return nil
}

func (r *firestoreUserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("users").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete user", err)
	}
	return nil
}
