package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/repository"
)

type directoryClient struct {
	client  *fasthttp.Client
	cfg     Config
	logger  *zap.Logger
	maxPage int
}

// NewDirectoryClient creates a directory provider backed by the workspace
// directory REST API.
func NewDirectoryClient(cfg Config, logger *zap.Logger) repository.DirectoryProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &directoryClient{
		client:  newClient("sigsync-directory"),
		cfg:     cfg,
		logger:  logger,
		maxPage: 500,
	}
}

type directoryPage struct {
	Users         []directoryUser `json:"users"`
	NextPageToken string          `json:"nextPageToken"`
}

type directoryUser struct {
	PrimaryEmail string `json:"primaryEmail"`
	Name         struct {
		GivenName  string `json:"givenName"`
		FamilyName string `json:"familyName"`
		FullName   string `json:"fullName"`
	} `json:"name"`
	OrgUnitPath   string `json:"orgUnitPath"`
	Archived      bool   `json:"archived"`
	Suspended     bool   `json:"suspended"`
	Organizations []struct {
		Title string `json:"title"`
	} `json:"organizations"`
	Phones []struct {
		Value   string `json:"value"`
		Primary bool   `json:"primary"`
	} `json:"phones"`
}

func (c *directoryClient) FetchUsers(ctx context.Context, dom string) ([]domain.Identity, error) {
	var identities []domain.Identity
	pageToken := ""

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.fetchPage(dom, pageToken)
		if err != nil {
			return nil, err
		}
		for _, user := range page.Users {
			identities = append(identities, toIdentity(user))
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.logger.Debug("directory fetched",
		zap.String("domain", dom),
		zap.Int("identities", len(identities)))
	return identities, nil
}

func (c *directoryClient) fetchPage(dom, pageToken string) (*directoryPage, error) {
	query := url.Values{}
	query.Set("domain", dom)
	query.Set("maxResults", fmt.Sprintf("%d", c.maxPage))
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}
	uri := fmt.Sprintf("%s/directory/v1/users?%s", c.cfg.BaseURL, query.Encode())

	status, body, err := do(c.client, fasthttp.MethodGet, uri, c.cfg.Token, nil, c.cfg.timeout())
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeDirectoryUnavailable, "directory request failed", err)
	}
	if !isSuccess(status) {
		return nil, domain.WrapError(
			domain.ErrCodeDirectoryUnavailable,
			fmt.Sprintf("directory responded with status %d", status),
			domain.ErrDirectoryUnavailable,
		)
	}

	var page directoryPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, domain.WrapError(domain.ErrCodeDirectoryUnavailable, "directory response malformed", err)
	}
	return &page, nil
}

func toIdentity(user directoryUser) domain.Identity {
	identity := domain.Identity{
		Email:       user.PrimaryEmail,
		GivenName:   user.Name.GivenName,
		FamilyName:  user.Name.FamilyName,
		FullName:    user.Name.FullName,
		OrgUnitPath: user.OrgUnitPath,
		Archived:    user.Archived,
		Suspended:   user.Suspended,
	}
	if len(user.Organizations) > 0 {
		identity.JobTitle = user.Organizations[0].Title
	}
	for _, phone := range user.Phones {
		if identity.Phone == "" || phone.Primary {
			identity.Phone = phone.Value
		}
	}
	return identity
}
