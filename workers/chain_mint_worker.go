package workers

import (
	"context"
	"log"
	"time"

	"receiptx/models"
	"receiptx/services"

	"gorm.io/gorm"
)

// PollUnmintedNFTs retries on-chain minting for NFTs that were awarded while the
// chain bridge was down or slow. Only NFTs with a wallet address can go on chain;
// the rest stay off-chain records forever.
func PollUnmintedNFTs(ctx context.Context, db *gorm.DB, minter *services.ChainMinter, pollInterval time.Duration) {
	if minter == nil {
		log.Println("Chain mint worker not started (bridge not configured).")
		return
	}
	log.Println("Starting chain mint retry worker...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Chain mint worker stopped.")
			return
		case <-ticker.C:
			var pending []models.UserNFT
			err := db.Where("on_chain = ? AND wallet_address <> ''", false).
				Order("created_at ASC").
				Limit(25).
				Find(&pending).Error
			if err != nil {
				log.Printf("❌ Failed to load unminted NFTs: %v", err)
				continue
			}
			if len(pending) == 0 {
				continue
			}
			log.Printf("📥 Retrying on-chain mint for %d NFT(s)...", len(pending))

			minted := 0
			for i := range pending {
				nft := &pending[i]
				txHash, mintErr := minter.Mint(ctx, nft)
				if mintErr != nil {
					log.Printf("⚠️ Mint retry failed for %s (%s): %v", nft.NFTType, nft.ID, mintErr)
					continue
				}
				err := db.Model(&models.UserNFT{}).Where("id = ?", nft.ID).
					Updates(map[string]interface{}{"on_chain": true, "chain_tx_hash": txHash}).Error
				if err != nil {
					log.Printf("⚠️ Failed to record chain tx for %s: %v", nft.ID, err)
					continue
				}
				minted++
			}
			if minted > 0 {
				log.Printf("✅ Minted %d NFT(s) on chain.", minted)
			}
		}
	}
}
