package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// ReportGeneratedMessage announces a report file written to the archive.
type ReportGeneratedMessage struct {
	ReportType    string    `json:"report_type"`
	FileName      string    `json:"file_name"`
	ObjectURL     string    `json:"object_url,omitempty"`
	StartDate     string    `json:"start_date,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
	CorrelationId string    `json:"correlation_id,omitempty"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

// ReportsTopic returns the topic for report notifications; empty disables
// publishing.
//
// Set via env:
// - REPORTS_PUBSUB_TOPIC
func ReportsTopic() string {
	return strings.TrimSpace(os.Getenv("REPORTS_PUBSUB_TOPIC"))
}

func getPubSubProjectID() string {
	// Prefer explicit override.
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	// Cloud Run/Cloud Functions often set this.
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return ""
}

func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var (
		c   *pubsub.Client
		err error
	)
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		// Uses Application Default Credentials (Cloud Run service account or GOOGLE_APPLICATION_CREDENTIALS).
		c, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	pubsubClient = c
	log.Printf("pubsub client ready (project_id=%s)", projectID)
	return pubsubClient, nil
}

// PublishReportGenerated publishes msg to REPORTS_PUBSUB_TOPIC and returns
// the server-assigned message ID.
func PublishReportGenerated(ctx context.Context, msg ReportGeneratedMessage) (string, error) {
	topicName := ReportsTopic()
	if topicName == "" {
		return "", errors.New("REPORTS_PUBSUB_TOPIC is required")
	}
	client, err := getPubSubClient(ctx)
	if err != nil {
		return "", err
	}

	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	result := client.Topic(topicName).Publish(ctx, &pubsub.Message{
		Data: msgJSON,
		Attributes: map[string]string{
			"report_type": msg.ReportType,
		},
	})
	return result.Get(ctx)
}
