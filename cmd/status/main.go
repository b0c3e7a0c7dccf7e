package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Operator CLI: prints a trade record, the fee/custody balances and
// the caller's own balance over the running API. Configure with
// API_URL and API_TOKEN.

type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		OK   bool            `json:"ok"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}

func main() {
	tradeID := flag.Int64("trade", 0, "trade id to inspect (0 skips the trade lookup)")
	flag.Parse()

	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	token := os.Getenv("API_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "API_TOKEN is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := newAPIClient(baseURL, token)

	if *tradeID > 0 {
		var trade map[string]any
		if err := client.get(ctx, fmt.Sprintf("/api/v1/trades/%d", *tradeID), &trade); err != nil {
			fmt.Fprintf(os.Stderr, "trade %d: %v\n", *tradeID, err)
			os.Exit(1)
		}
		pretty, _ := json.MarshalIndent(trade, "", "  ")
		fmt.Printf("trade %d:\n%s\n\n", *tradeID, pretty)
	}

	var fees struct {
		FeeBalance     int64 `json:"fee_balance"`
		CustodyBalance int64 `json:"custody_balance"`
	}
	if err := client.get(ctx, "/api/v1/fees", &fees); err != nil {
		fmt.Fprintf(os.Stderr, "fees: %v\n", err)
	} else {
		fmt.Printf("fee balance:     %d\n", fees.FeeBalance)
		fmt.Printf("custody balance: %d\n", fees.CustodyBalance)
	}

	var balance struct {
		PartyID string `json:"party_id"`
		Balance int64  `json:"balance"`
	}
	if err := client.get(ctx, "/api/v1/accounts/me/balance", &balance); err != nil {
		fmt.Fprintf(os.Stderr, "balance: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("party %s balance: %d\n", balance.PartyID, balance.Balance)
}
