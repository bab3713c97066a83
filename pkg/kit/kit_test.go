package kit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestChainOrder(t *testing.T) {
	var trace []string
	mark := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				trace = append(trace, name)
				return next(ctx, req)
			}
		}
	}
	e := Chain(mark("a"), mark("b"), mark("c"))(func(context.Context, any) (any, error) {
		trace = append(trace, "endpoint")
		return nil, nil
	})
	e(context.Background(), nil)

	if got := strings.Join(trace, ","); got != "a,b,c,endpoint" {
		t.Errorf("trace = %s", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	e := RequestID()(func(ctx context.Context, _ any) (any, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	})

	e(context.Background(), nil)
	if len(seen) != 36 {
		t.Errorf("generated id = %q, want a UUID", seen)
	}

	e(WithRequestID(context.Background(), "fixed"), nil)
	if seen != "fixed" {
		t.Errorf("id = %q, want existing id kept", seen)
	}
}

func TestTransportDefault(t *testing.T) {
	if got := GetTransport(context.Background()); got != TransportHTTP {
		t.Errorf("default transport = %q", got)
	}
	if got := GetTransport(WithTransport(context.Background(), TransportMCP)); got != TransportMCP {
		t.Errorf("transport = %q", got)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok := Logging(logger, "describe")(func(context.Context, any) (any, error) { return "x", nil })
	if resp, err := ok(WithRequestID(context.Background(), "r1"), nil); resp != "x" || err != nil {
		t.Fatalf("resp = %v, err = %v", resp, err)
	}
	if out := buf.String(); !strings.Contains(out, "endpoint=describe") || !strings.Contains(out, "request_id=r1") {
		t.Errorf("log = %s", out)
	}

	buf.Reset()
	boom := errors.New("boom")
	failing := Logging(logger, "parse_page")(func(context.Context, any) (any, error) { return nil, boom })
	if _, err := failing(context.Background(), nil); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error=boom") {
		t.Errorf("log = %s", out)
	}
}

func TestJSONResultKeepsCJK(t *testing.T) {
	res := jsonResult(map[string]string{"canonical": "水洗（Washed）", "html": "<b>"})
	if len(res.Content) != 1 {
		t.Fatalf("content = %v", res.Content)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", res.Content[0])
	}
	if !strings.Contains(text.Text, "水洗（Washed）") || !strings.Contains(text.Text, "<b>") {
		t.Errorf("text = %s", text.Text)
	}
}
