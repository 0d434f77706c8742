package cms

import (
	"context"
	"net/url"
	"time"

	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
)

type Banner struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	LinkURL  string `json:"link_url,omitempty"`
	Active   bool   `json:"active"`
}

type BlogPost struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type FAQEntry struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

type Collection struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Handle   string `json:"handle"`
	ImageURL string `json:"image_url,omitempty"`
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

func populateQuery() url.Values {
	query := url.Values{}
	query.Set("populate", "*")
	return query
}

func (c *Client) Banners(ctx context.Context) ([]Banner, error) {
	var envelope listEnvelope[Banner]
	found, err := c.get(ctx, "/api/banners", populateQuery(), &envelope)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Banner{}, nil
	}
	return envelope.Data, nil
}

func (c *Client) BlogPosts(ctx context.Context) ([]BlogPost, error) {
	query := populateQuery()
	query.Set("sort", "published_at:desc")
	var envelope listEnvelope[BlogPost]
	found, err := c.get(ctx, "/api/blog-posts", query, &envelope)
	if err != nil {
		return nil, err
	}
	if !found {
		return []BlogPost{}, nil
	}
	return envelope.Data, nil
}

func (c *Client) BlogPost(ctx context.Context, slug string) (*BlogPost, error) {
	query := populateQuery()
	query.Set("filters[slug][$eq]", slug)
	var envelope listEnvelope[BlogPost]
	found, err := c.get(ctx, "/api/blog-posts", query, &envelope)
	if err != nil {
		return nil, err
	}
	if !found || len(envelope.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blog post not found")
	}
	return &envelope.Data[0], nil
}

func (c *Client) FAQs(ctx context.Context) ([]FAQEntry, error) {
	var envelope listEnvelope[FAQEntry]
	found, err := c.get(ctx, "/api/faqs", populateQuery(), &envelope)
	if err != nil {
		return nil, err
	}
	if !found {
		return []FAQEntry{}, nil
	}
	return envelope.Data, nil
}

func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	var envelope listEnvelope[Collection]
	found, err := c.get(ctx, "/api/collections", populateQuery(), &envelope)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Collection{}, nil
	}
	return envelope.Data, nil
}
