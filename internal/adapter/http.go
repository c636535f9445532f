package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/utils"
	"github.com/MKhiriev/go-pim-sync/models"
)

type httpAdminClient struct {
	client *utils.HTTPClient
	token  string

	logger *logger.Logger
}

// NewHTTPAdminClient returns an [AdminClient] for cfg.AdminURL. A URL
// without scheme is taken as http. Requests are bounded by
// cfg.RequestTimeout and carry cfg.AdminToken as bearer token when set.
func NewHTTPAdminClient(cfg config.Peer, logger *logger.Logger) (AdminClient, error) {
	baseURL, err := normalizeBaseURL(cfg.AdminURL)
	if err != nil {
		return nil, fmt.Errorf("invalid admin url: %w", err)
	}

	return &httpAdminClient{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		token:  strings.TrimSpace(cfg.AdminToken),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Version implements [AdminClient] with GET /api/version?format=json.
func (h *httpAdminClient) Version(ctx context.Context) (models.VersionInfo, error) {
	var info models.VersionInfo

	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("format", "json").
		SetResult(&info).
		Get("/api/version")
	if err != nil {
		return info, fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return info, err
	}

	return info, nil
}

// Status implements [AdminClient] with GET /api/status.
func (h *httpAdminClient) Status(ctx context.Context) (models.SessionStatus, error) {
	var status models.SessionStatus

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&status).
		Get("/api/status")
	if err != nil {
		return status, fmt.Errorf("status request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return status, err
	}

	return status, nil
}

// RevokePeers implements [AdminClient] with DELETE /api/peers.
func (h *httpAdminClient) RevokePeers(ctx context.Context) error {
	resp, err := h.authedRequest(ctx).Delete("/api/peers")
	if err != nil {
		return fmt.Errorf("revoke peers request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	h.logger.Info().Msg("device forgot all trusted peers")
	return nil
}

func (h *httpAdminClient) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.token != "" {
		req.SetAuthToken(h.token)
	}
	return req
}
