package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/vipul43/blogforge/internal/apperr"
	"github.com/vipul43/blogforge/internal/config"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/upstream"
)

const shareContentKey = "com.linkedin.ugc.ShareContent"

var LinkedInEndpoints = Endpoints{
	AuthURL:    "https://www.linkedin.com/oauth/v2/authorization",
	TokenURL:   "https://www.linkedin.com/oauth/v2/accessToken",
	APIBaseURL: "https://api.linkedin.com",
}

// LinkedIn sends client credentials in the form body.
type LinkedIn struct {
	oauthClient
}

func NewLinkedIn(creds config.ProviderCredentials, client *upstream.Client) *LinkedIn {
	return &LinkedIn{oauthClient: oauthClient{
		name:      models.ProviderLinkedIn,
		creds:     creds,
		scopes:    []string{"r_liteprofile", "r_emailaddress", "w_member_social"},
		authStyle: oauth2.AuthStyleInParams,
		endpoints: LinkedInEndpoints,
		client:    client,
	}}
}

// SetEndpoints overrides the API locations
func (l *LinkedIn) SetEndpoints(ep Endpoints) {
	l.endpoints = ep
}

func (l *LinkedIn) Name() models.Provider {
	return models.ProviderLinkedIn
}

// AuthCodeURL ignores the verifier, LinkedIn's three-legged flow has no PKCE.
func (l *LinkedIn) AuthCodeURL(state, _ string) (string, error) {
	return l.authCodeURL(state)
}

func (l *LinkedIn) Exchange(ctx context.Context, code, _ string) (*Token, error) {
	return l.exchange(ctx, code)
}

// FetchProfile reads /v2/me and merges the primary email address into it.
// The email lookup is best effort.
func (l *LinkedIn) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	me, err := l.fetchMe(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	email := l.fetchEmail(ctx, accessToken)
	if email != "" {
		me["email"] = email
	}

	name := strings.TrimSpace(stringField(me, "localizedFirstName") + " " + stringField(me, "localizedLastName"))
	return &Profile{
		ID:    stringField(me, "id"),
		Name:  name,
		Email: email,
		Raw:   me,
	}, nil
}

func (l *LinkedIn) fetchMe(ctx context.Context, accessToken string) (map[string]any, error) {
	var me map[string]any
	if _, err := l.getJSON(ctx, l.endpoints.APIBaseURL+"/v2/me", accessToken, nil, &me); err != nil {
		return nil, upstreamError("Failed to fetch LinkedIn profile", err)
	}
	if me == nil {
		return nil, apperr.Upstream("Failed to fetch LinkedIn profile", fmt.Errorf("empty profile"))
	}
	return me, nil
}

func (l *LinkedIn) fetchEmail(ctx context.Context, accessToken string) string {
	var resp struct {
		Elements []struct {
			Handle struct {
				EmailAddress string `json:"emailAddress"`
			} `json:"handle~"`
		} `json:"elements"`
	}
	endpoint := l.endpoints.APIBaseURL + "/v2/emailAddress?q=members&projection=(elements*(handle~))"
	if _, err := l.getJSON(ctx, endpoint, accessToken, nil, &resp); err != nil {
		return ""
	}
	if len(resp.Elements) == 0 {
		return ""
	}
	return resp.Elements[0].Handle.EmailAddress
}

// FetchContent lists the member's UGC posts. Without a member id the
// token owner is used.
func (l *LinkedIn) FetchContent(ctx context.Context, accessToken string, q ContentQuery) (*Content, error) {
	if accessToken == "" {
		return nil, apperr.Validation("Access token is required")
	}

	memberID := q.MemberID
	if memberID == "" {
		me, err := l.fetchMe(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		memberID = stringField(me, "id")
		if memberID == "" {
			return nil, apperr.NotFound("Could not retrieve member ID")
		}
	}

	endpoint := fmt.Sprintf("%s/v2/ugcPosts?q=authors&authors=List(%s)",
		l.endpoints.APIBaseURL, url.QueryEscape("urn:li:person:"+memberID))
	body, err := l.getJSON(ctx, endpoint, accessToken, map[string]string{"X-Restli-Protocol-Version": "2.0.0"}, nil)
	if err != nil {
		return nil, upstreamError("Failed to fetch LinkedIn posts", err)
	}

	posts, err := parseUGCPosts(body)
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch LinkedIn posts", err)
	}

	return &Content{Raw: json.RawMessage(body), Posts: posts}, nil
}

func parseUGCPosts(body []byte) ([]models.Post, error) {
	var resp struct {
		Elements []struct {
			ID      string `json:"id"`
			Created struct {
				Time int64 `json:"time"`
			} `json:"created"`
			SpecificContent map[string]struct {
				ShareCommentary struct {
					Text string `json:"text"`
				} `json:"shareCommentary"`
			} `json:"specificContent"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse posts: %w", err)
	}

	posts := make([]models.Post, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		share, ok := el.SpecificContent[shareContentKey]
		if !ok {
			continue
		}
		posts = append(posts, models.Post{
			ID:        el.ID,
			Text:      share.ShareCommentary.Text,
			CreatedAt: time.UnixMilli(el.Created.Time).UTC(),
		})
	}
	return posts, nil
}
