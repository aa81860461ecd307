package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/vipul43/blogforge/internal/apperr"
	"github.com/vipul43/blogforge/internal/config"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/upstream"
)

const twitterMaxResults = 10

var TwitterEndpoints = Endpoints{
	AuthURL:    "https://twitter.com/i/oauth2/authorize",
	TokenURL:   "https://api.twitter.com/2/oauth2/token",
	APIBaseURL: "https://api.twitter.com",
}

// Twitter uses PKCE and sends client credentials as a Basic header.
type Twitter struct {
	oauthClient
}

func NewTwitter(creds config.ProviderCredentials, client *upstream.Client) *Twitter {
	return &Twitter{oauthClient: oauthClient{
		name:      models.ProviderTwitter,
		creds:     creds,
		scopes:    []string{"tweet.read", "users.read", "offline.access"},
		authStyle: oauth2.AuthStyleInHeader,
		endpoints: TwitterEndpoints,
		client:    client,
	}}
}

// SetEndpoints overrides the API locations
func (t *Twitter) SetEndpoints(ep Endpoints) {
	t.endpoints = ep
}

func (t *Twitter) Name() models.Provider {
	return models.ProviderTwitter
}

func (t *Twitter) AuthCodeURL(state, verifier string) (string, error) {
	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	}
	return t.authCodeURL(state, opts...)
}

func (t *Twitter) Exchange(ctx context.Context, code, verifier string) (*Token, error) {
	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}
	return t.exchange(ctx, code, opts...)
}

func (t *Twitter) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var resp struct {
		Data map[string]any `json:"data"`
	}
	endpoint := t.endpoints.APIBaseURL + "/2/users/me?user.fields=profile_image_url,name,username"
	if _, err := t.getJSON(ctx, endpoint, accessToken, nil, &resp); err != nil {
		return nil, upstreamError("Failed to fetch Twitter profile", err)
	}
	if resp.Data == nil {
		return nil, apperr.Upstream("Failed to fetch Twitter profile", fmt.Errorf("response has no data"))
	}

	return &Profile{
		ID:       stringField(resp.Data, "id"),
		Name:     stringField(resp.Data, "name"),
		Username: stringField(resp.Data, "username"),
		Raw:      resp.Data,
	}, nil
}

// FetchContent resolves the handle to a user id, then reads the most
// recent tweets of that user.
func (t *Twitter) FetchContent(ctx context.Context, accessToken string, q ContentQuery) (*Content, error) {
	if accessToken == "" || q.Username == "" {
		return nil, apperr.Validation("Access token and username are required")
	}

	userID, err := t.lookupUserID(ctx, accessToken, q.Username)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/2/users/%s/tweets?max_results=%d&tweet.fields=created_at,public_metrics,text&expansions=author_id",
		t.endpoints.APIBaseURL, url.PathEscape(userID), twitterMaxResults)
	body, err := t.getJSON(ctx, endpoint, accessToken, nil, nil)
	if err != nil {
		return nil, upstreamError("Failed to fetch tweets", err)
	}

	posts, err := parseTweets(body)
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch tweets", err)
	}

	return &Content{Raw: json.RawMessage(body), Posts: posts}, nil
}

func (t *Twitter) lookupUserID(ctx context.Context, accessToken, username string) (string, error) {
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	endpoint := t.endpoints.APIBaseURL + "/2/users/by/username/" + url.PathEscape(username)
	if _, err := t.getJSON(ctx, endpoint, accessToken, nil, &resp); err != nil {
		return "", upstreamError("Failed to look up Twitter user", err)
	}
	if resp.Data.ID == "" {
		return "", apperr.NotFound("Could not retrieve user ID")
	}
	return resp.Data.ID, nil
}

func parseTweets(body []byte) ([]models.Post, error) {
	var resp struct {
		Data []struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			CreatedAt string `json:"created_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse tweets: %w", err)
	}

	posts := make([]models.Post, 0, len(resp.Data))
	for _, tw := range resp.Data {
		var createdAt time.Time
		if tw.CreatedAt != "" {
			parsed, err := time.Parse(time.RFC3339, tw.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("invalid created_at on tweet %s: %w", tw.ID, err)
			}
			createdAt = parsed
		}
		posts = append(posts, models.Post{ID: tw.ID, Text: tw.Text, CreatedAt: createdAt})
	}
	return posts, nil
}
