package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/klokku/kladd/internal/config"
)

// newOAuthClient builds an http client that refreshes itself from the
// offline token stored in cfg.TokenFile. Obtaining that token (the one-time
// browser consent) happens outside of kladd.
func newOAuthClient(ctx context.Context, cfg config.Google) (*http.Client, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientId,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}

	token, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	return oauthConfig.Client(ctx, token), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, fmt.Errorf("google token file is not configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open Google token file: %v", err)
	}
	defer f.Close()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("unable to parse Google token file %s: %v", path, err)
	}
	return &token, nil
}
