// Command vaultctl inspects and exports a MindVault store without the bot.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"mindvault/internal/config"
	"mindvault/internal/storage"
)

func main() {
	open := func(ctx context.Context) (*storage.Store, error) {
		st, err := config.LoadStorage()
		if err != nil {
			return nil, err
		}
		blobs, err := storage.Open(ctx, st.Options())
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return storage.NewStore(blobs, time.Now), nil
	}

	if err := NewRootCmd(open, time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}
