package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	source := testutil.WriteSource(t, t.TempDir(), testutil.SampleOutline)
	return New(source, export.Options{DefaultSection: "posts"})
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "list_posts":
		result, err = srv.listPosts(ctx, req)
	case "read_post":
		result, err = srv.readPost(ctx, req)
	case "get_post_format":
		result, err = srv.getPostFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListPosts(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_posts", nil)
	if r.IsError {
		t.Fatalf("list_posts failed: %s", resultText(r))
	}

	var infos []models.Post
	if err := json.Unmarshal([]byte(resultText(r)), &infos); err != nil {
		t.Fatalf("list_posts output is not JSON: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("posts = %d, want 2", len(infos))
	}
	if infos[0].Path != "posts/first-post.md" || infos[0].Title != "First Post" {
		t.Errorf("first post = %+v", infos[0])
	}
}

func TestReadPost(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_post", map[string]interface{}{"path": "posts/first-post.md"})
	if r.IsError {
		t.Fatalf("read_post failed: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.HasPrefix(text, "---\n") {
		t.Errorf("document missing front matter:\n%s", text)
	}
	if !strings.Contains(text, "title: First Post") {
		t.Errorf("title missing:\n%s", text)
	}
	if !strings.Contains(text, "fmt.Println(\"hello\")") {
		t.Errorf("body missing:\n%s", text)
	}
}

func TestReadPostMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_post", map[string]interface{}{"path": "posts/nope.md"})
	if !r.IsError {
		t.Fatal("expected error result for missing post")
	}
}

func TestGetPostFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_post_format", nil)
	if !strings.Contains(resultText(r), "EXPORT_FILE_NAME") {
		t.Error("contract should document the export marker")
	}
}
