package firebase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/example/collex/internal/config"
)

// CredentialsOption picks the credential source in order: credentials file,
// base64 service account JSON, then Application Default Credentials (nil).
func CredentialsOption(cfg *config.Config) (option.ClientOption, error) {
	if cfg.GoogleApplicationCredentials != "" {
		if _, err := os.Stat(cfg.GoogleApplicationCredentials); err != nil {
			return nil, fmt.Errorf("credentials file %s: %w", cfg.GoogleApplicationCredentials, err)
		}
		return option.WithCredentialsFile(cfg.GoogleApplicationCredentials), nil
	}
	if cfg.FirebaseServiceAccountJSONBase64 != "" {
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, errors.New("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is not a valid base64 string")
		}
		return option.WithCredentialsJSON(jsonKey), nil
	}
	return nil, nil
}

// NewApp initializes the Firebase Admin SDK app for the configured project.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*firebase.App, error) {
	if cfg == nil {
		return nil, errors.New("firebase.NewApp: config cannot be nil")
	}

	opt, err := CredentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	conf := &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	}

	var app *firebase.App
	if opt != nil {
		app, err = firebase.NewApp(ctx, conf, opt)
	} else {
		logger.Info("No explicit Firebase credentials, using Application Default Credentials")
		app, err = firebase.NewApp(ctx, conf)
	}
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	logger.Info("Firebase app initialized", zap.String("projectID", cfg.FirebaseProjectID))
	return app, nil
}
