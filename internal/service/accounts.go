package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/voyagen/channeldeck/internal/m3u"
	"github.com/voyagen/channeldeck/internal/models"
	"github.com/voyagen/channeldeck/internal/store"
	"github.com/voyagen/channeldeck/internal/xtream"
)

// ClientFactory builds a catalog client bound to one account's credentials.
type ClientFactory func(creds xtream.Credentials) (*xtream.Client, error)

// Accounts manages Xtream accounts and proxies catalog browsing.
// Every account gets its own client so credentials never leak between accounts.
type Accounts struct {
	Store     store.Store
	NewClient ClientFactory
}

// PlayRequest identifies a catalog item to play. Name and Logo are copied onto
// the resulting channel as shown in the catalog listing.
type PlayRequest struct {
	Type      models.ContentType
	ItemID    int64
	Extension string
	Name      string
	Logo      string
}

// Add authenticates the credentials and stores the account once the server accepts them.
func (a *Accounts) Add(ctx context.Context, name, serverURL, username, password string) (*models.XtreamAccount, error) {
	acc := &models.XtreamAccount{
		Name:      strings.TrimSpace(name),
		ServerURL: strings.TrimRight(strings.TrimSpace(serverURL), "/"),
		Username:  strings.TrimSpace(username),
		Password:  password,
	}
	if err := requireAccountFields(acc); err != nil {
		return nil, err
	}
	if err := a.authenticate(ctx, acc); err != nil {
		return nil, err
	}
	if err := a.Store.CreateAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	return acc, nil
}

// Update changes an account. When credentials change they are checked against
// the server before anything is stored.
func (a *Accounts) Update(ctx context.Context, id string, fields store.AccountUpdate) (*models.XtreamAccount, error) {
	acc, err := a.Store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if fields.ServerURL != nil {
		trimmed := strings.TrimRight(strings.TrimSpace(*fields.ServerURL), "/")
		fields.ServerURL = &trimmed
	}
	fields.Apply(acc)
	if err := requireAccountFields(acc); err != nil {
		return nil, err
	}
	if fields.ServerURL != nil || fields.Username != nil || fields.Password != nil {
		if err := a.authenticate(ctx, acc); err != nil {
			return nil, err
		}
	}
	if err := a.Store.UpdateAccount(ctx, id, fields); err != nil {
		return nil, err
	}
	return a.Store.GetAccount(ctx, id)
}

// Categories lists one content type's categories on the account's server.
func (a *Accounts) Categories(ctx context.Context, accountID string, ct models.ContentType) ([]models.CatalogCategory, error) {
	c, err := a.client(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return c.Categories(ctx, ct)
}

// Items lists catalog items, optionally restricted to a category and filtered
// by a case-insensitive substring of the name.
func (a *Accounts) Items(ctx context.Context, accountID string, ct models.ContentType, categoryID, search string) ([]models.CatalogItem, error) {
	c, err := a.client(ctx, accountID)
	if err != nil {
		return nil, err
	}
	items, err := c.Items(ctx, ct, categoryID)
	if err != nil {
		return nil, err
	}
	return filterItems(items, search), nil
}

// Play resolves a catalog item into a channel ready for playback.
func (a *Accounts) Play(ctx context.Context, accountID string, req PlayRequest) (models.Channel, error) {
	c, err := a.client(ctx, accountID)
	if err != nil {
		return models.Channel{}, err
	}
	url := c.BuildStreamURL(req.Type, req.ItemID, req.Extension)
	if url == "" {
		return models.Channel{}, fmt.Errorf("%w: type", ErrMissingField)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = m3u.DefaultName
	}
	return models.Channel{
		ID:   fmt.Sprintf("%d", req.ItemID),
		Name: name,
		URL:  url,
		Logo: req.Logo,
	}, nil
}

func (a *Accounts) client(ctx context.Context, accountID string) (*xtream.Client, error) {
	acc, err := a.Store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return a.NewClient(xtream.FromAccount(acc))
}

func (a *Accounts) authenticate(ctx context.Context, acc *models.XtreamAccount) error {
	c, err := a.NewClient(xtream.FromAccount(acc))
	if err != nil {
		return err
	}
	_, err = c.Authenticate(ctx)
	return err
}

func requireAccountFields(acc *models.XtreamAccount) error {
	switch {
	case acc.Name == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	case acc.ServerURL == "":
		return fmt.Errorf("%w: server_url", ErrMissingField)
	case acc.Username == "":
		return fmt.Errorf("%w: username", ErrMissingField)
	case acc.Password == "":
		return fmt.Errorf("%w: password", ErrMissingField)
	}
	return nil
}

func filterItems(items []models.CatalogItem, search string) []models.CatalogItem {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return items
	}
	out := make([]models.CatalogItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}
