package wardrobestore

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/stylescout/backend/internal/domain"
)

const (
	usersCollection    = "users"
	wardrobeCollection = "wardrobeItems"
	looksCollection    = "looks"
	profileCollection  = "profile"
	styleDocument      = "style"
)

// Store reads the user's synced wardrobe and style profile from Firestore.
// All records are externally owned; the store never writes.
type Store struct {
	client *firestore.Client
	userID string
}

// NewStore connects to Firestore for the given project and user. An empty
// credentials file falls back to application-default credentials.
func NewStore(ctx context.Context, projectID, credentialsFile, userID string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	log.Printf("[WARDROBE-STORE] connected to project %s for user %s", projectID, userID)
	return &Store{client: client, userID: userID}, nil
}

// Close releases the underlying Firestore client
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) userDoc() *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(s.userID)
}

// ListItems returns every wardrobe item with its AI analysis
func (s *Store) ListItems(ctx context.Context) ([]domain.WardrobeItem, error) {
	var items []domain.WardrobeItem

	iter := s.userDoc().Collection(wardrobeCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrWardrobeUnavailable, err)
		}

		var item domain.WardrobeItem
		if err := doc.DataTo(&item); err != nil {
			log.Printf("[WARDROBE-STORE] skipping malformed item %s: %v", doc.Ref.ID, err)
			continue
		}
		item.ID = doc.Ref.ID
		items = append(items, item)
	}

	return items, nil
}

// ListLooks returns the user's saved outfits
func (s *Store) ListLooks(ctx context.Context) ([]domain.Look, error) {
	var looks []domain.Look

	iter := s.userDoc().Collection(looksCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrWardrobeUnavailable, err)
		}

		var look domain.Look
		if err := doc.DataTo(&look); err != nil {
			log.Printf("[WARDROBE-STORE] skipping malformed look %s: %v", doc.Ref.ID, err)
			continue
		}
		look.ID = doc.Ref.ID
		looks = append(looks, look)
	}

	return looks, nil
}

// Watch invokes onChange for every wardrobe mutation until ctx is cancelled.
// The initial snapshot does not fire; callers only care about changes after
// they have loaded the wardrobe themselves.
func (s *Store) Watch(ctx context.Context, onChange func()) {
	go func() {
		snapshots := s.userDoc().Collection(wardrobeCollection).Snapshots(ctx)
		defer snapshots.Stop()

		first := true
		for {
			_, err := snapshots.Next()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[WARDROBE-STORE] wardrobe watch ended: %v", err)
				}
				return
			}
			if first {
				first = false
				continue
			}
			log.Printf("[WARDROBE-STORE] wardrobe changed")
			onChange()
		}
	}()
}

// StyleProfile reads the user's style profile. A missing profile document
// yields an empty profile, not an error.
func (s *Store) StyleProfile(ctx context.Context) (*domain.StyleProfile, error) {
	doc, err := s.userDoc().Collection(profileCollection).Doc(styleDocument).Get(ctx)
	if err != nil {
		if doc != nil && !doc.Exists() {
			return &domain.StyleProfile{}, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrWardrobeUnavailable, err)
	}

	var profile domain.StyleProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWardrobeUnavailable, err)
	}
	return &profile, nil
}
