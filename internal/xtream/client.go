// Package xtream is a client for Xtream Codes compatible catalog servers.
//
// A Client is bound to one account's credentials at construction, so clients for
// different accounts never share state. Credentials appear in request URLs but
// never in log output.
package xtream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/voyagen/channeldeck/internal/metrics"
	"github.com/voyagen/channeldeck/internal/models"
)

const (
	apiPath            = "/player_api.php"
	defaultHTTPTimeout = 30 * time.Second
)

var (
	// ErrConnection means the server could not be reached or answered non-2xx.
	ErrConnection = errors.New("xtream: connection error")
	// ErrInvalidCredentials means the server rejected the username/password.
	ErrInvalidCredentials = errors.New("xtream: invalid credentials")
	// ErrDecode means the server answered with an unexpected body.
	ErrDecode = errors.New("xtream: unexpected response")
	// ErrInvalidConfig means the credentials are incomplete or the server URL is not http(s).
	ErrInvalidConfig = errors.New("xtream: invalid configuration")
)

// Credentials identify one account on one server.
type Credentials struct {
	ServerURL string
	Username  string
	Password  string
}

// FromAccount returns the credentials stored on acc.
func FromAccount(acc *models.XtreamAccount) Credentials {
	return Credentials{ServerURL: acc.ServerURL, Username: acc.Username, Password: acc.Password}
}

// Client talks to one account's player_api.php.
type Client struct {
	base       string
	username   string
	password   string
	userAgent  string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New validates creds and returns a client bound to them.
// A trailing slash on the server URL is ignored.
func New(creds Credentials, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(creds.ServerURL), "/")
	if base == "" || creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: server url, username and password are required", ErrInvalidConfig)
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: server url must be an http or https URL", ErrInvalidConfig)
	}

	c := &Client{
		base:       base,
		username:   creds.Username,
		password:   creds.Password,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Authenticate checks the credentials against the server.
func (c *Client) Authenticate(ctx context.Context) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.apiCall(ctx, "", nil, &resp); err != nil {
		return nil, err
	}
	if resp.UserInfo == nil || (resp.UserInfo.Auth != nil && *resp.UserInfo.Auth == 0) {
		return nil, ErrInvalidCredentials
	}
	return &resp, nil
}

var categoryActions = map[models.ContentType]string{
	models.ContentLive:   "get_live_categories",
	models.ContentVOD:    "get_vod_categories",
	models.ContentSeries: "get_series_categories",
}

var itemActions = map[models.ContentType]string{
	models.ContentLive:   "get_live_streams",
	models.ContentVOD:    "get_vod_streams",
	models.ContentSeries: "get_series",
}

// Categories lists the categories for one content type.
func (c *Client) Categories(ctx context.Context, ct models.ContentType) ([]models.CatalogCategory, error) {
	action, ok := categoryActions[ct]
	if !ok {
		return nil, fmt.Errorf("xtream: unknown content type %q", ct)
	}
	var raw []rawCategory
	if err := c.apiCall(ctx, action, nil, &raw); err != nil {
		return nil, err
	}
	cats := make([]models.CatalogCategory, 0, len(raw))
	for _, r := range raw {
		cats = append(cats, models.CatalogCategory{
			ID:       string(r.CategoryID),
			Name:     r.CategoryName,
			ParentID: int64(r.ParentID),
		})
	}
	return cats, nil
}

// Items lists streams, movies or series, optionally restricted to categoryID.
func (c *Client) Items(ctx context.Context, ct models.ContentType, categoryID string) ([]models.CatalogItem, error) {
	action, ok := itemActions[ct]
	if !ok {
		return nil, fmt.Errorf("xtream: unknown content type %q", ct)
	}
	params := url.Values{}
	if categoryID != "" {
		params.Set("category_id", categoryID)
	}
	var raw []rawItem
	if err := c.apiCall(ctx, action, params, &raw); err != nil {
		return nil, err
	}
	items := make([]models.CatalogItem, 0, len(raw))
	for i := range raw {
		items = append(items, toItem(ct, &raw[i]))
	}
	return items, nil
}

func toItem(ct models.ContentType, r *rawItem) models.CatalogItem {
	item := models.CatalogItem{
		Type:         ct,
		ID:           int64(r.StreamID),
		Name:         string(r.Name),
		Icon:         r.StreamIcon,
		CategoryID:   string(r.CategoryID),
		Extension:    models.DefaultExtension,
		EPGChannelID: string(r.EPGChannelID),
		Rating:       string(r.Rating),
		Plot:         r.Plot,
		Added:        string(r.Added),
	}
	switch ct {
	case models.ContentVOD:
		if r.ContainerExtension != "" {
			item.Extension = r.ContainerExtension
		}
	case models.ContentSeries:
		item.ID = int64(r.SeriesID)
		item.Icon = r.Cover
	}
	return item
}

// apiCall performs a player_api.php call and decodes the JSON body into dest.
// An empty action is the authentication call.
func (c *Client) apiCall(ctx context.Context, action string, params url.Values, dest any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("username", c.username)
	q.Set("password", c.password)
	if action != "" {
		q.Set("action", action)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+apiPath+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: new request: %v", ErrConnection, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log := c.log.WithFields(logrus.Fields{"host": c.safeHost(), "action": action})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordXtreamRequest(action, "error")
		log.WithError(redact(err, c.password)).Debug("xtream request failed")
		return fmt.Errorf("%w: action=%q host=%s", ErrConnection, action, c.safeHost())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordXtreamRequest(action, "error")
		log.WithField("status", resp.StatusCode).Debug("xtream request rejected")
		return fmt.Errorf("%w: HTTP %d for action=%q host=%s", ErrConnection, resp.StatusCode, action, c.safeHost())
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		metrics.RecordXtreamRequest(action, "decode_error")
		return fmt.Errorf("%w: action=%q: %v", ErrDecode, action, err)
	}
	metrics.RecordXtreamRequest(action, "ok")
	return nil
}

// safeHost returns only the host portion of the server URL for log output.
func (c *Client) safeHost() string {
	u, err := url.Parse(c.base)
	if err != nil {
		return "[unparseable]"
	}
	return u.Host
}

// redact strips the password from transport errors, which quote the request URL.
func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(secret), "***")
	return errors.New(strings.ReplaceAll(msg, secret, "***"))
}
