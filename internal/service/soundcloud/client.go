// Package soundcloud resolves (title, artist) pairs against the SoundCloud
// search API. Lookups degrade gracefully: a track the catalog cannot resolve
// becomes a placeholder, never an error and never a dropped request.
package soundcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kapu/moodtunes-go/internal/constants"
	"github.com/kapu/moodtunes-go/internal/domain"
	"github.com/kapu/moodtunes-go/internal/util"
	"github.com/kapu/moodtunes-go/pkg/errors"
)

// sentinelToken stands in for a real bearer token in offline development.
const sentinelToken = "sentinel-dev-token"

// SearchCache stores catalog search results across requests. A nil cache
// disables caching.
type SearchCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type ClientConfig struct {
	ClientID     string
	ClientSecret string
	// AllowSentinelToken substitutes a static token when credentials are
	// absent. Production leaves this off and fails loudly instead.
	AllowSentinelToken bool
	BaseURL            string
	TokenURL           string
}

// Client is the track catalog client. The token source is the only shared
// mutable state; oauth2 reuses a cached token and single-flights refreshes.
type Client struct {
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	cache       SearchCache
	logger      *zap.Logger
	baseURL     string
}

func NewClient(cfg ClientConfig, httpClient *http.Client, cache SearchCache, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.HTTPConfig.ClientTimeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = constants.Catalog.BaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = constants.Catalog.TokenURL
	}

	c := &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     logger,
		baseURL:    baseURL,
	}

	switch {
	case cfg.ClientID != "" && cfg.ClientSecret != "":
		ccConfig := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		c.tokenSource = ccConfig.TokenSource(tokenCtx)
	case cfg.AllowSentinelToken:
		logger.Warn("SoundCloud credentials absent, using sentinel token (development only)")
		c.tokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: sentinelToken})
	default:
		// ensureToken fails with AuthError on every call.
		c.tokenSource = nil
	}

	return c
}

// ensureToken returns a valid bearer token, performing the client-credentials
// exchange when the cached token is missing or expired.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if c.tokenSource == nil {
		return "", errors.NewAuthError("soundcloud", fmt.Errorf("client credentials not configured"))
	}

	token, err := c.tokenSource.Token()
	if err != nil {
		c.logger.Error("SoundCloud token exchange failed", zap.Error(err))
		return "", errors.NewAuthError("soundcloud", err)
	}
	return token.AccessToken, nil
}

// Search resolves one (title, artist) pair. The only error it returns is an
// AuthError from the credential exchange; every other failure degrades to a
// placeholder track carrying the original request values.
func (c *Client) Search(ctx context.Context, title, artist string) (domain.ResolvedTrack, error) {
	query := util.CollapseWhitespace(title + " " + artist)
	cacheKey := "soundcloud:search:" + util.Normalize(query)

	if c.cache != nil {
		var cached domain.ResolvedTrack
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil && cached.ID != "" {
			c.logger.Debug("Catalog search cache hit", zap.String("query", query))
			return cached, nil
		}
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return domain.ResolvedTrack{}, err
	}

	track, lookupErr := c.searchOnce(ctx, query, token)
	if lookupErr != nil {
		// Absorbed here: the caller only ever sees the placeholder.
		c.logger.Warn("Catalog lookup failed, returning placeholder",
			zap.Error(errors.NewCatalogLookupError(title, artist, lookupErr)),
		)
		return placeholderTrack(title, artist), nil
	}
	if track == nil {
		c.logger.Info("No catalog results",
			zap.String("title", title),
			zap.String("artist", artist),
		)
		return placeholderTrack(title, artist), nil
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, track, constants.CacheTTL.TrackSearch); err != nil {
			c.logger.Warn("Failed to cache search result", zap.String("query", query), zap.Error(err))
		}
	}

	return *track, nil
}

// catalogTrack mirrors the search endpoint's wire format.
type catalogTrack struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	PermalinkURL string `json:"permalink_url"`
	User         struct {
		Username  string `json:"username"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user"`
	ArtworkURL string `json:"artwork_url"`
	StreamURL  string `json:"stream_url"`
}

// searchOnce performs the catalog query and maps the first result. A nil
// track with nil error means zero results.
func (c *Client) searchOnce(ctx context.Context, query, token string) (*domain.ResolvedTrack, error) {
	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(constants.Catalog.SearchLimit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tracks?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("soundcloud search returned %s", resp.Status)
	}

	var results []catalogTrack
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	first := results[0]

	albumCover := highResArtwork(first.ArtworkURL)
	if albumCover == "" {
		albumCover = highResArtwork(first.User.AvatarURL)
	}

	playable := ""
	if first.StreamURL != "" {
		playable = first.StreamURL + "?oauth_token=" + token
	}

	return &domain.ResolvedTrack{
		ID:            strconv.FormatInt(first.ID, 10),
		Name:          first.Title,
		Artist:        first.User.Username,
		AlbumCoverURL: albumCover,
		PlayableURL:   playable,
		ExternalURL:   first.PermalinkURL,
		EmbedURL:      embedURL(first.PermalinkURL),
		Origin:        domain.OriginCatalog,
	}, nil
}

// placeholderTrack stands in for a request the catalog could not resolve.
// It keeps the original title/artist and carries no URLs.
func placeholderTrack(title, artist string) domain.ResolvedTrack {
	return domain.ResolvedTrack{
		ID:     "placeholder-" + uuid.NewString(),
		Name:   title,
		Artist: artist,
		Origin: domain.OriginUnresolved,
	}
}

// highResArtwork upgrades the catalog's default artwork size.
func highResArtwork(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}
	return strings.Replace(artworkURL, "-large", "-t500x500", 1)
}

func embedURL(permalink string) string {
	if permalink == "" {
		return ""
	}
	return constants.Catalog.EmbedPlayerURL +
		"?url=" + url.QueryEscape(permalink) +
		"&color=%23ff5500&auto_play=false&hide_related=true&show_comments=false&show_user=true&show_reposts=false&show_teaser=false"
}
