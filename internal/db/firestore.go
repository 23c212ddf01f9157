package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

var (
	// fsClient is the global Firestore client instance.
	fsClient *firestore.Client
	// fbAuthClient is the global Firebase Auth client instance.
	fbAuthClient *auth.Client
)

// InitFirestore creates the Firestore and Firebase Auth clients from an initialized app.
func InitFirestore(ctx context.Context, app *firebase.App, logger *zap.Logger) error {
	if app == nil {
		return fmt.Errorf("InitFirestore: firebase app cannot be nil")
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}

	authCl, err := app.Auth(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("app.Auth: %w", err)
	}

	fsClient = client
	fbAuthClient = authCl
	logger.Info("Firestore and Firebase Auth clients initialized")
	return nil
}

// GetFirestoreClient returns the global Firestore client, or nil before InitFirestore.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}

// GetFirebaseAuthClient returns the global Firebase Auth client, or nil before InitFirestore.
func GetFirebaseAuthClient() *auth.Client {
	return fbAuthClient
}

// Close releases the Firestore client.
func Close() error {
	if fsClient == nil {
		return nil
	}
	return fsClient.Close()
}
