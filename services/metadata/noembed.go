package metadatasvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"vlogvalidator/core"
)

// noembedService resolves video titles via the public noembed endpoint; it
// needs no API key and works for any embeddable video. Lookups are bounded
// and degrade to a fallback title: a timed-out request may still complete in
// the background but its response is discarded with the context.
type noembedService struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  core.Logger
}

var _ core.MetadataService = (*noembedService)(nil)

func NewNoembedService(conf *core.Config, logger core.Logger) *noembedService {
	return &noembedService{
		baseURL: conf.Noembed.BaseURL,
		timeout: conf.Noembed.Timeout,
		client:  &http.Client{},
		logger:  logger,
	}
}

func (svc *noembedService) Resolve(ctx context.Context, videoID string) core.VideoMeta {
	fallback := core.VideoMeta{
		VideoID:  videoID,
		Title:    core.FallbackVideoTitle,
		Privacy:  core.PrivacyUnknown,
		Degraded: true,
	}

	ctx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	watchURL := "https://www.youtube.com/watch?v=" + videoID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.baseURL+"?url="+url.QueryEscape(watchURL), nil)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("building noembed request: %v", err))
		return fallback
	}

	res, err := svc.client.Do(req)
	if err != nil {
		// network error or timeout; accept the video anyway
		svc.logger.Warn(fmt.Sprintf("noembed lookup failed for %s, using fallback title: %v", videoID, err))
		return fallback
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		svc.logger.Warn(fmt.Sprintf("noembed lookup for %s: status %d", videoID, res.StatusCode))
		return fallback
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err = json.NewDecoder(res.Body).Decode(&payload); err != nil || payload.Title == "" {
		svc.logger.Warn(fmt.Sprintf("noembed lookup for %s: unusable payload", videoID))
		return fallback
	}

	return core.VideoMeta{
		VideoID: videoID,
		Title:   payload.Title,
		Privacy: core.PrivacyPublic,
	}
}
