package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"receiptx/models"
)

// ChainMinter is the feature-flagged bridge to the on-chain mint service. When the
// bridge URL is not configured the pipeline skips chain minting entirely.
type ChainMinter struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewChainMinterFromEnv returns nil when CHAIN_BRIDGE_URL is unset. Callers treat
// a nil minter as "integration not configured"
func NewChainMinterFromEnv() *ChainMinter {
	baseURL := os.Getenv("CHAIN_BRIDGE_URL")
	if baseURL == "" {
		log.Println("⚠️  CHAIN_BRIDGE_URL not set, on-chain minting disabled")
		return nil
	}
	return &ChainMinter{
		BaseURL: baseURL,
		Token:   os.Getenv("CHAIN_BRIDGE_TOKEN"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Mint submits the NFT to the bridge and returns the transaction hash
func (m *ChainMinter) Mint(ctx context.Context, nft *models.UserNFT) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"nft_id":         nft.ID,
		"nft_type":       nft.NFTType,
		"wallet_address": nft.WalletAddress,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/api/v1/mint", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.Token != "" {
		req.Header.Set("X-Service-Token", m.Token)
	}

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call chain bridge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chain bridge returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode chain bridge response: %w", err)
	}
	return result.TxHash, nil
}
