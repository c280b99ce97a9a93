package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fleetsync-backend/internal/models"
)

var apiClient = &http.Client{Timeout: 10 * time.Second}

// saveProfile merge-writes the signed-in driver's registration document.
func saveProfile(ctx context.Context, baseURL, token string, update models.ProfileUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, baseURL+"/api/driver/profile", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := apiClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach profile service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("profile service returned %d", resp.StatusCode)
	}
	return nil
}
