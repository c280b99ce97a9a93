package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewFirebaseApp initialises the Firebase app from base64-encoded
// credentials when given (cloud deployments), else from a credentials file.
func NewFirebaseApp(ctx context.Context, credentialsBase64, credentialsFile string) (*firebase.App, error) {
	var opt option.ClientOption
	if credentialsBase64 != "" {
		credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(credentialsJSON)
		log.Println("🔑 Using base64 Firebase credentials")
	} else {
		if credentialsFile == "" {
			return nil, fmt.Errorf("no Firebase credentials configured")
		}
		opt = option.WithCredentialsFile(credentialsFile)
		log.Printf("🔑 Using Firebase credentials file %s", credentialsFile)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	return app, nil
}
