package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"

	"gorm.io/gorm"
)

// NotifierClient drains undispatched notifications to the external push
// gateway. Delivery is at-least-once: a row is only marked dispatched after
// the gateway accepted it, so a crash between POST and update re-sends.
type NotifierClient struct {
	GatewayURL string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewNotifierClient(db *gorm.DB, gatewayURL, token string) *NotifierClient {
	return &NotifierClient{
		GatewayURL: gatewayURL,
		Token:      token,
		DB:         db,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *NotifierClient) push(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(map[string]interface{}{
		"user_id": n.UserID,
		"title":   n.Title,
		"message": n.Message,
		"type":    n.Type,
		"data":    n.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/api/v1/push", c.GatewayURL), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call push gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push gateway returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// PollNotifications ships pending notification rows to the push gateway on a
// fixed interval until ctx is cancelled.
func PollNotifications(ctx context.Context, client *NotifierClient, pollInterval time.Duration) {
	if client.GatewayURL == "" {
		log.Println("📭 Push gateway not configured, notifier worker disabled")
		return
	}
	log.Println("Starting notification dispatch worker...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification worker stopped.")
			return
		case <-ticker.C:
			var pending []models.Notification
			err := client.DB.Where("dispatched = false").
				Order("created_at ASC").
				Limit(50).
				Find(&pending).Error
			if err != nil {
				log.Printf("❌ Error loading pending notifications: %v", err)
				continue
			}
			if len(pending) == 0 {
				continue
			}

			sent := 0
			for i := range pending {
				if err := client.push(ctx, &pending[i]); err != nil {
					log.Printf("❌ Failed to dispatch notification %s: %v", pending[i].ID, err)
					// leave it undispatched, retry next tick
					continue
				}
				if err := client.DB.Model(&pending[i]).
					Update("dispatched", true).Error; err != nil {
					log.Printf("❌ Failed to mark notification %s dispatched: %v", pending[i].ID, err)
					continue
				}
				sent++
			}
			if sent > 0 {
				log.Printf("📬 Dispatched %d notification(s)", sent)
			}
		}
	}
}
