package gcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imamik/runway/internal/util/cache"
)

// domainMappingTTL bounds how long a domain mapping lookup is reused.
const domainMappingTTL = time.Minute

// ResourceReader describes resources.
type ResourceReader interface {
	Describe(ctx context.Context, ref Ref) (*Resource, error)
}

// ResourceWriter creates and deletes resources.
type ResourceWriter interface {
	// Create runs "<group> create <name>" with the given extra flags.
	Create(ctx context.Context, ref Ref, flags ...string) error
	Delete(ctx context.Context, ref Ref) error
	// AddBackend attaches a serverless NEG to a global backend service.
	AddBackend(ctx context.Context, backend, neg Ref) error
}

// DomainMappingManager manages legacy Cloud Run domain mappings.
type DomainMappingManager interface {
	DescribeDomainMapping(ctx context.Context, domain, region string) (*DomainMapping, error)
	DeleteDomainMapping(ctx context.Context, domain, region string) error
}

// API is everything the provisioning core needs from gcloud.
type API interface {
	ResourceReader
	ResourceWriter
	DomainMappingManager
}

// Client implements API on top of an Executor.
type Client struct {
	exec     Executor
	project  string
	mappings *cache.TTL[string, *DomainMapping]
}

var _ API = (*Client)(nil)

// NewClient creates a client scoped to one project.
func NewClient(exec Executor, project string) *Client {
	return &Client{
		exec:     exec,
		project:  project,
		mappings: cache.New[string, *DomainMapping](domainMappingTTL),
	}
}

// Describe returns the resource or an error matching IsNotFound.
func (c *Client) Describe(ctx context.Context, ref Ref) (*Resource, error) {
	res, err := c.run(ctx, append(ref.args(VerbDescribe), "--format=json")...)
	if err != nil {
		return nil, err
	}

	var out Resource
	if err := json.Unmarshal([]byte(res.Stdout), &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ref, err)
	}
	return &out, nil
}

// Create creates the referenced resource.
func (c *Client) Create(ctx context.Context, ref Ref, flags ...string) error {
	args := append(ref.args(VerbCreate), flags...)
	_, err := c.run(ctx, args...)
	return err
}

// Delete deletes the referenced resource without prompting.
func (c *Client) Delete(ctx context.Context, ref Ref) error {
	_, err := c.run(ctx, append(ref.args(VerbDelete), "--quiet")...)
	return err
}

// AddBackend attaches neg to the backend service.
func (c *Client) AddBackend(ctx context.Context, backend, neg Ref) error {
	args := append(backend.args(VerbAddBackend),
		"--network-endpoint-group="+neg.Name,
		"--network-endpoint-group-region="+neg.Region,
	)
	_, err := c.run(ctx, args...)
	return err
}

// DescribeDomainMapping looks up the Cloud Run domain mapping for domain.
// Successful lookups are cached briefly.
func (c *Client) DescribeDomainMapping(ctx context.Context, domain, region string) (*DomainMapping, error) {
	key := domain + "|" + region
	if dm, ok := c.mappings.Get(key); ok {
		return dm, nil
	}

	res, err := c.run(ctx, domainMappingArgs(VerbDescribe, domain, region, "--format=json")...)
	if err != nil {
		return nil, err
	}

	var dm DomainMapping
	if err := json.Unmarshal([]byte(res.Stdout), &dm); err != nil {
		return nil, fmt.Errorf("failed to parse domain mapping %s: %w", domain, err)
	}
	c.mappings.Set(key, &dm)
	return &dm, nil
}

// DeleteDomainMapping removes the domain mapping for domain.
func (c *Client) DeleteDomainMapping(ctx context.Context, domain, region string) error {
	c.mappings.Invalidate(domain + "|" + region)
	_, err := c.run(ctx, domainMappingArgs(VerbDelete, domain, region, "--quiet")...)
	return err
}

func domainMappingArgs(verb, domain, region string, extra ...string) []string {
	args := []string{"beta", "run", "domain-mappings", verb,
		"--domain=" + domain,
		"--region=" + region,
		"--platform=managed",
	}
	return append(args, extra...)
}

func (c *Client) run(ctx context.Context, args ...string) (*Result, error) {
	if c.project != "" {
		args = append(args, "--project="+c.project)
	}
	return c.exec.Run(ctx, args...)
}
