package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/Universesboy/french-streak-app/internal/streak"
)

const usersCollection = "users"

// userDoc is the users/{uid} document layout. The streak record lives in
// a streakData sub-object; the timestamps are bookkeeping the core never
// reads.
type userDoc struct {
	Email       string      `firestore:"email,omitempty"`
	StreakData  streak.Data `firestore:"streakData"`
	CreatedAt   time.Time   `firestore:"createdAt,omitempty"`
	LastUpdated time.Time   `firestore:"lastUpdated,omitempty"`
}

// FirestoreStore is the remote per-user document store backed by the
// project's Firestore database.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes the Firestore client. It first attempts
// to use credentials from the FIREBASE_SERVICE_ACCOUNT_JSON environment
// variable (Base64 encoded) and falls back to a local service account
// key file.
func NewFirestoreStore(ctx context.Context, localFilePath string) (*FirestoreStore, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials from FIREBASE_SERVICE_ACCOUNT_JSON: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Println("Firestore: Initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable.")
	} else {
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("local firebase key file not found: %s, and FIREBASE_SERVICE_ACCOUNT_JSON environment variable is not set", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Printf("Firestore: Initializing from local file: %s.", localFilePath)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Load(ctx context.Context, uid string) (*streak.Data, error) {
	snap, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read user document %s: %w", uid, err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		// A document we cannot decode behaves like an absent one; the
		// caller falls back to the local copy.
		log.Printf("Unreadable user document %s, treating as absent: %v", uid, err)
		return nil, nil
	}

	normalized := streak.Normalize(doc.StreakData)
	return &normalized, nil
}

func (s *FirestoreStore) Save(ctx context.Context, uid string, data *streak.Data) error {
	ref := s.client.Collection(usersCollection).Doc(uid)

	fields := map[string]interface{}{
		"streakData":  *data,
		"lastUpdated": firestore.ServerTimestamp,
	}

	// First save for a new user creates the document with its creation
	// timestamp; later saves leave createdAt alone.
	if snap, err := ref.Get(ctx); err != nil && snap != nil && !snap.Exists() {
		fields["createdAt"] = firestore.ServerTimestamp
	}

	if _, err := ref.Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to write user document %s: %w", uid, err)
	}
	return nil
}

// Keys lists every uid with a user document, for the batch repair job.
func (s *FirestoreStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list user documents: %w", err)
		}
		keys = append(keys, snap.Ref.ID)
	}
	return keys, nil
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
