// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the blog's posts to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/search"
)

// Source provides the current content set and its search index.
type Source interface {
	Snapshot() (*content.Set, *search.Index, error)
}

// Server wraps the MCP server with the blog tools.
type Server struct {
	mcp     *server.MCPServer
	src     Source
	baseURL string
}

type postRef struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"publishedAt"`
	Score       *float64 `json:"score,omitempty"`
}

type postDoc struct {
	postRef
	Author    string `json:"author"`
	UpdatedAt string `json:"updatedAt"`
	Body      string `json:"body"`
}

type categoryRef struct {
	Slug  string `json:"slug"`
	Posts int    `json:"posts"`
}

// New creates an MCP server with all tools registered. baseURL prefixes the
// post URLs it returns.
func New(src Source, baseURL, version string) *Server {
	s := &Server{src: src, baseURL: strings.TrimRight(baseURL, "/")}

	s.mcp = server.NewMCPServer(
		"inkblog",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Typo-tolerant search over published post titles, descriptions and tags. Best matches first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum results (default %d, max %d)", search.OverlayLimit, search.PageLimit))),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Read a published post: metadata and Markdown body."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug, e.g. guides/ethereum")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List categories with their number of published posts."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List published posts of a category, newest first."),
		mcp.WithString("category", mcp.Description(`Category slug (default "all")`)),
	), s.listPosts)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", search.OverlayLimit)
	if limit < 1 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}
	limit = min(limit, search.PageLimit)

	set, ix, err := s.src.Snapshot()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := search.Top(ix.Search(query), limit)
	out := make([]postRef, 0, len(results))
	for _, r := range results {
		p, err := set.Post(r.Item.ID)
		if err != nil {
			continue
		}
		ref := s.ref(p)
		score := r.Score
		ref.Score = &score
		out = append(out, ref)
	}
	return jsonResult(out)
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	set, _, err := s.src.Snapshot()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := set.Post(slug)
	if errors.Is(err, content.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(postDoc{
		postRef:   s.ref(p),
		Author:    p.Author,
		UpdatedAt: p.UpdatedAt.Format(time.DateOnly),
		Body:      p.Body,
	})
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	set, _, err := s.src.Snapshot()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]categoryRef, 0, len(set.Categories()))
	for _, c := range set.Categories() {
		posts, err := set.InCategory(c)
		if err != nil {
			continue
		}
		out = append(out, categoryRef{Slug: c, Posts: len(posts)})
	}
	return jsonResult(out)
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", content.CategoryAll)
	if strings.TrimSpace(category) == "" {
		category = content.CategoryAll
	}
	set, _, err := s.src.Snapshot()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	posts, err := set.InCategory(category)
	if errors.Is(err, content.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s", category)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]postRef, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.ref(p))
	}
	return jsonResult(out)
}

func (s *Server) ref(p content.Post) postRef {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postRef{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		URL:         s.baseURL + p.URL,
		Tags:        tags,
		PublishedAt: p.PublishedAt.Format(time.DateOnly),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
