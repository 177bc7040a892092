package remote

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"sanctuary-app/internal/youtube"
)

type Video struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Speaker     string             `json:"speaker,omitempty"`
	Date        string             `json:"date,omitempty"`
	YouTubeURL  string             `json:"youtubeUrl"`
	Video       *youtube.VideoInfo `json:"video,omitempty"`
}

type Content struct {
	Sermons    []Video `json:"sermons"`
	LiveVideos []Video `json:"liveVideos"`
}

// FetchContent loads sermons and live videos and attaches the parsed YouTube descriptor to each.
func (c *Client) FetchContent(ctx context.Context) (Content, error) {
	var out Content
	if err := c.query(ctx, "content.getAll", nil, &out); err != nil {
		return Content{}, err
	}
	enrich(out.Sermons)
	enrich(out.LiveVideos)
	if out.Sermons == nil {
		out.Sermons = []Video{}
	}
	if out.LiveVideos == nil {
		out.LiveVideos = []Video{}
	}
	return out, nil
}

func enrich(videos []Video) {
	for i := range videos {
		if info, ok := youtube.Parse(videos[i].YouTubeURL); ok {
			videos[i].Video = &info
		}
	}
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Category    string          `json:"category,omitempty"`
	InStock     bool            `json:"inStock"`
}

type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description,omitempty" validate:"max=4000"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Category    string          `json:"category,omitempty"`
	InStock     bool            `json:"inStock"`
}

type ProductPatch struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Category    *string          `json:"category,omitempty"`
	InStock     *bool            `json:"inStock,omitempty"`
}

var ErrInvalidPrice = errors.New("price must not be negative")

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.query(ctx, "shop.getProducts", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	if in.Price.IsNegative() {
		return Product{}, ErrInvalidPrice
	}
	in.Price = in.Price.Round(2)
	var out Product
	if err := c.mutate(ctx, "shop.createProduct", in, &out); err != nil {
		return Product{}, err
	}
	return out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return Product{}, ErrInvalidPrice
		}
		p := patch.Price.Round(2)
		patch.Price = &p
	}
	input := struct {
		ID string `json:"id"`
		ProductPatch
	}{ID: strings.TrimSpace(id), ProductPatch: patch}

	var out Product
	if err := c.mutate(ctx, "shop.updateProduct", input, &out); err != nil {
		return Product{}, err
	}
	return out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.mutate(ctx, "shop.deleteProduct", map[string]string{"id": strings.TrimSpace(id)}, nil)
}

type FlaggedPost struct {
	ID         string `json:"id"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	Content    string `json:"content"`
	Reason     string `json:"reason,omitempty"`
	FlaggedAt  string `json:"flaggedAt,omitempty"`
}

type ModerationAction string

const (
	ModerationApprove ModerationAction = "approve"
	ModerationRemove  ModerationAction = "remove"
)

func (c *Client) ListFlaggedPosts(ctx context.Context) ([]FlaggedPost, error) {
	var out []FlaggedPost
	if err := c.query(ctx, "community.getFlaggedPosts", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []FlaggedPost{}
	}
	return out, nil
}

func (c *Client) ModeratePost(ctx context.Context, postID string, action ModerationAction) error {
	in := map[string]string{"postId": strings.TrimSpace(postID), "action": string(action)}
	return c.mutate(ctx, "community.moderatePost", in, nil)
}

type GroupInput struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	MemberIDs   []string `json:"memberIds,omitempty"`
}

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"memberIds"`
}

func (c *Client) CreateGroup(ctx context.Context, in GroupInput) (Group, error) {
	var out Group
	if err := c.mutate(ctx, "community.createGroup", in, &out); err != nil {
		return Group{}, err
	}
	return out, nil
}

type AdminUser struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type AdminLoginResult struct {
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}

func (c *Client) AdminLogin(ctx context.Context, email, password string) (AdminLoginResult, error) {
	in := map[string]string{"email": strings.TrimSpace(email), "password": password}
	var out AdminLoginResult
	if err := c.mutate(ctx, "admin.login", in, &out); err != nil {
		return AdminLoginResult{}, err
	}
	return out, nil
}
