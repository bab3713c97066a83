package api

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/coffee-lexicon/pkg/kit"
	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
)

// NewMCPServer returns an MCP server exposing the lexicon tools.
func NewMCPServer(reg *lexicon.Registry, version string, logger *slog.Logger) *server.MCPServer {
	srv := server.NewMCPServer("coffeelex", version, server.WithToolCapabilities(false))
	RegisterMCPTools(srv, reg, logger)
	return srv
}

// RegisterMCPTools registers the three lexicon MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, reg *lexicon.Registry, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	mw := func(name string) kit.Middleware {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name))
	}
	registerCanonicalizeTerm(srv, mw("canonicalize_term")(canonicalizeEndpoint(reg)))
	registerParseDescription(srv, mw("parse_description")(describeEndpoint(reg)))
	registerLexiconStats(srv, mw("lexicon_stats")(lexiconEndpoint(reg)))
}

func registerCanonicalizeTerm(srv *server.MCPServer, e kit.Endpoint) {
	tool := mcp.NewTool("canonicalize_term",
		mcp.WithDescription("Map a raw coffee attribute (process, roast, variety or country) to its canonical bilingual term."),
		mcp.WithString("category", mcp.Required(), mcp.Description("One of process, roast, variety, country")),
		mcp.WithString("term", mcp.Required(), mcp.Description("The raw term, e.g. 水洗 or yellow bourbon")),
	)

	kit.RegisterMCPTool(srv, tool, e, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		category, _ := args["category"].(string)
		term, _ := args["term"].(string)
		return &kit.MCPDecodeResult{Request: &canonicalizeReq{Category: category, Term: term}}, nil
	})
}

func registerParseDescription(srv *server.MCPServer, e kit.Endpoint) {
	tool := mcp.NewTool("parse_description",
		mcp.WithDescription("Segment a free-text coffee product description into labeled fields and canonicalize process, roast, variety, country and bean type."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Description text, one attribute per line such as 品種：卡杜艾")),
		mcp.WithString("title", mcp.Description("Product title, used for blend detection")),
	)

	kit.RegisterMCPTool(srv, tool, e, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		text, _ := args["text"].(string)
		title, _ := args["title"].(string)
		return &kit.MCPDecodeResult{Request: &describeReq{Text: text, Title: title}}, nil
	})
}

func registerLexiconStats(srv *server.MCPServer, e kit.Endpoint) {
	tool := mcp.NewTool("lexicon_stats",
		mcp.WithDescription("List the lexicon categories with term, alias and pattern counts."),
	)

	kit.RegisterMCPTool(srv, tool, e, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}
