package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mottu/mottu-cli/internal/api"
	"github.com/mottu/mottu-cli/internal/config"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
	profile   string
	baseURL   string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("mottu-cli/%s", version),
		profile:   flags.Profile,
		baseURL:   flags.BaseURL,
	}
}

// getClient builds a client from the stored session and global flags.
func getClient() (*api.Client, error) {
	return newClientFactory().client()
}

func (f *clientFactory) client() (*api.Client, error) {
	cfg, err := config.ResolveClientConfig(f.profile, f.baseURL)
	if err != nil {
		return nil, err
	}
	return f.newClient(cfg), nil
}

func (f *clientFactory) newClient(cfg config.ClientConfig) *api.Client {
	client := api.New(cfg.BaseURL, api.NewSession(cfg.Token))
	client.APIVersion = cfg.APIVersion
	client.Paths = cfg.Paths
	client.UserAgent = f.userAgent
	client.Logger = slog.Default()
	if hc, ok := client.HTTP.(*http.Client); ok && f.timeout > 0 {
		hc.Timeout = f.timeout
	}
	return client
}
