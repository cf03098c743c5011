package packages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/logging"
)

const (
	// DefaultServer is the public NuGet service index.
	DefaultServer = "https://api.nuget.org/v3/index.json"

	// baseAddressType names the flat container resource in a service index.
	baseAddressType = "PackageBaseAddress/3.0.0"

	// maxJSONResponseBytes bounds index documents (10 MB).
	maxJSONResponseBytes = 10 << 20

	// maxPackageBytes bounds a downloaded .nupkg (512 MB).
	maxPackageBytes = 512 << 20
)

type (
	// Registry queries a NuGet v3 registry.
	Registry struct {
		httpClient *http.Client
		server     string
		userAgent  string
		maxPackage int64

		mu   sync.Mutex
		base string
	}

	// RegistryOption configures a Registry during construction.
	RegistryOption func(*Registry)

	serviceIndex struct {
		Version   string            `json:"version"`
		Resources []serviceResource `json:"resources"`
	}

	serviceResource struct {
		ID   string `json:"@id"`
		Type string `json:"@type"`
	}

	versionIndex struct {
		Versions []string `json:"versions"`
	}
)

// WithHTTPClient sets the HTTP client, useful for tests or proxies.
func WithHTTPClient(c *http.Client) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// WithServer sets the registry URL. A URL ending in index.json is read as a
// service index; anything else is used as the flat container base.
func WithServer(server string) RegistryOption {
	return func(r *Registry) {
		if s := strings.TrimSpace(server); s != "" {
			r.server = s
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) RegistryOption {
	return func(r *Registry) {
		r.userAgent = ua
	}
}

// WithMaxPackageSize bounds the size of a downloaded package.
func WithMaxPackageSize(n int64) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxPackage = n
		}
	}
}

// NewRegistry creates a Registry. Defaults: server=DefaultServer,
// userAgent="deployer/dev", httpClient=http.DefaultClient.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		httpClient: http.DefaultClient,
		server:     DefaultServer,
		userAgent:  "deployer/dev",
		maxPackage: maxPackageBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Server returns the configured registry URL.
func (r *Registry) Server() string { return r.server }

// BaseAddress returns the flat container base URL, reading the service
// index on first use. Failures are not remembered.
func (r *Registry) BaseAddress(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.base != "" {
		return r.base, nil
	}
	if !strings.HasSuffix(strings.ToLower(r.server), "index.json") {
		r.base = strings.TrimRight(r.server, "/")
		return r.base, nil
	}

	var index serviceIndex
	if err := r.getJSON(ctx, r.server, &index); err != nil {
		return "", errors.Wrapf(err, errors.ErrPackageDownload, "reading service index %s", r.server)
	}
	for _, res := range index.Resources {
		if res.Type == baseAddressType {
			r.base = strings.TrimRight(res.ID, "/")
			logger := logging.GetLogger("packages.registry")
			logger.Debug().
				Str("server", r.server).
				Str("base", r.base).
				Msg("Resolved package base address")
			return r.base, nil
		}
	}
	return "", errors.Newf(errors.ErrPackageDownload, "service index %s has no %s resource", r.server, baseAddressType)
}

// Versions lists the published versions of id in ascending order. An
// unknown package yields a PACKAGE_NOT_FOUND error.
func (r *Registry) Versions(ctx context.Context, id string) ([]string, error) {
	base, err := r.BaseAddress(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s/index.json", base, url.PathEscape(strings.ToLower(id)))
	var index versionIndex
	if err := r.getJSON(ctx, u, &index); err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			return nil, errors.Newf(errors.ErrPackageNotFound, "package %s not found", id).
				WithDetail("package", id)
		}
		return nil, errors.Wrapf(err, errors.ErrPackageDownload, "listing versions of %s", id)
	}

	SortVersions(index.Versions)
	return index.Versions, nil
}

// Download fetches the .nupkg of id at version.
func (r *Registry) Download(ctx context.Context, id, version string) ([]byte, error) {
	base, err := r.BaseAddress(ctx)
	if err != nil {
		return nil, err
	}

	lid, lver := url.PathEscape(strings.ToLower(id)), url.PathEscape(NormalizeVersion(version))
	u := fmt.Sprintf("%s/%s/%s/%s.%s.nupkg", base, lid, lver, lid, lver)

	resp, err := r.do(ctx, u)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPackageDownload, "downloading %s %s", id, version)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrPackageDownload, "downloading %s %s: unexpected status %d", id, version, resp.StatusCode).
			WithDetail("package", id).
			WithDetail("version", version)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, r.maxPackage+1))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPackageDownload, "downloading %s %s", id, version)
	}
	if n > r.maxPackage {
		return nil, errors.Newf(errors.ErrPackageDownload, "package %s %s exceeds %d bytes", id, version, r.maxPackage)
	}
	return buf.Bytes(), nil
}

func (r *Registry) getJSON(ctx context.Context, u string, v any) error {
	resp, err := r.do(ctx, u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return errors.Newf(errors.ErrNotFound, "%s not found", u)
	default:
		return errors.Newf(errors.ErrPackageDownload, "GET %s: unexpected status %d", u, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(v); err != nil {
		return errors.Wrapf(err, errors.ErrPackageDownload, "decoding %s", u)
	}
	return nil
}

func (r *Registry) do(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.ErrCanceled, "request canceled")
		}
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}
