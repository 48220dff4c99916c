package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/pkg/utils"
	"golang.org/x/oauth2"
)

const refreshWindow = 30 * time.Minute

type TokenRefreshJob struct {
	log    *slog.Logger
	gc     repository.GoogleConnectionRepository
	cipher *utils.TokenCipher
	oauth  *oauth2.Config
	now    func() time.Time
}

func NewTokenRefreshJob(
	log *slog.Logger,
	gc repository.GoogleConnectionRepository,
	cipher *utils.TokenCipher,
	oauth *oauth2.Config) *TokenRefreshJob {
	return &TokenRefreshJob{
		log:    log,
		gc:     gc,
		cipher: cipher,
		oauth:  oauth,
		now:    time.Now,
	}
}

// Run is the cron entry point.
func (c *TokenRefreshJob) Run() {
	refreshed := c.RefreshTokens(context.Background())
	c.log.Info("google token refresh finished", "refreshed", refreshed)
}

// RefreshTokens refreshes every Google connection whose access token expires
// within the refresh window and returns how many succeeded.
func (c *TokenRefreshJob) RefreshTokens(ctx context.Context) int {
	connections, err := c.gc.ListExpiring(ctx, c.now().Add(refreshWindow))
	if err != nil {
		slog.Info(err.Error())
		return 0
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	refreshed := 0

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, conn := range connections {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(conn *models.GoogleConnection) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.refresh(ctx, conn); err != nil {
				c.log.Warn("unable to refresh google token", "google_connection_id", conn.ID, "error", err.Error())
				return
			}
			mu.Lock()
			refreshed++
			mu.Unlock()
		}(conn)
	}

	wg.Wait()
	return refreshed
}

func (c *TokenRefreshJob) refresh(ctx context.Context, conn *models.GoogleConnection) error {
	refreshToken, err := c.cipher.Decrypt(conn.RefreshToken)
	if err != nil {
		return fmt.Errorf("error decrypting refresh token: %w", err)
	}

	token, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return fmt.Errorf("error refreshing token: %w", err)
	}

	encrypted, err := c.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return fmt.Errorf("error encrypting access token: %w", err)
	}

	return c.gc.SetToken(ctx, conn.ID, encrypted, token.Expiry)
}
