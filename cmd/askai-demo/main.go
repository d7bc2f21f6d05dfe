// README: Client demo; posts one query and streams the resulting chips.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"askai/internal/modules/preference"
	"askai/internal/stream"
)

func main() {
	base := os.Getenv("ASKAI_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	token := os.Getenv("ASKAI_AUTH_TOKEN")
	if token == "" {
		log.Fatal("ASKAI_AUTH_TOKEN environment variable not set")
	}

	sessionID := uuid.NewString()

	sess := stream.NewSession(stream.Config{
		URL:    fmt.Sprintf("%s/api/askai/subscribe?session=%s", base, sessionID),
		Token:  token,
		Domain: preference.DomainFlight,
		OnChips: func(chips preference.ChipSet) {
			fmt.Println("Chips:")
			for _, c := range chips.Values() {
				fmt.Printf("  [%s]\n", c)
			}
		},
		OnError: func(err error) {
			log.Printf("stream error: %v", err)
		},
	})
	sess.Connect(context.Background())
	defer sess.Disconnect()

	// Give the subscription a moment to attach before the query fires.
	time.Sleep(500 * time.Millisecond)

	query := "Non-stop EVA Air flight to Tokyo, morning departure, under $500, 3 days"
	fmt.Printf("User: %s\n", query)

	body, _ := json.Marshal(map[string]string{
		"uid":        "demo-user",
		"session_id": sessionID,
		"query":      query,
		"domain":     "flight",
	})
	req, err := http.NewRequest(http.MethodPost, base+"/api/askai/query", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("query request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("query request returned %d", resp.StatusCode)
	}

	// Wait for the extracted chips to arrive on the stream.
	time.Sleep(5 * time.Second)
}
