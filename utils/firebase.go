package utils

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// NewFCMClient initializes the Firebase Admin SDK and returns its messaging
// client. It returns (nil, nil) when FCM is not configured, so push
// notifications are simply disabled.
func NewFCMClient(ctx context.Context, credentialsPath, projectID string, log *zap.Logger) (*messaging.Client, error) {
	if credentialsPath == "" {
		credentialsPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if credentialsPath == "" {
		log.Info("ℹ️ FCM not configured, push notifications disabled")
		return nil, nil
	}

	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
	}
	if projectID == "" {
		return nil, fmt.Errorf("FCM_PROJECT_ID is required for FCM")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("firebase app initialization failed: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("FCM client initialization failed: %w", err)
	}

	log.Info("✅ FCM client initialized", zap.String("project_id", projectID))
	return client, nil
}
