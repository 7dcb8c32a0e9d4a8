// Package identity wraps the Firebase Admin SDK used to verify bearer
// tokens into a caller identity.
package identity

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// NewVerifier initializes a Firebase auth client. Credentials come from the
// FIREBASE_SERVICE_KEY environment variable (Base64 encoded service account
// JSON) with a fallback to a local key file.
func NewVerifier(ctx context.Context, localFilePath string) (*auth.Client, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("FIREBASE_SERVICE_KEY")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("decode base64 firebase credentials from FIREBASE_SERVICE_KEY: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Println("Identity: initializing from FIREBASE_SERVICE_KEY environment variable")
	} else {
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("local firebase key file not found: %s, and FIREBASE_SERVICE_KEY is not set", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Printf("Identity: initializing from local file %s", localFilePath)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("get auth client: %w", err)
	}

	return client, nil
}
