package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/catalog"
	"github.com/hazyhaar/coffee-lexicon/pkg/kit"
	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
	"github.com/hazyhaar/coffee-lexicon/pkg/product"
	"github.com/hazyhaar/coffee-lexicon/pkg/shop"
	"github.com/hazyhaar/coffee-lexicon/pkg/textnorm"
)

// Shared request/response types used by both HTTP and MCP transports.

// errInvalid marks a request the caller must fix.
var errInvalid = errors.New("invalid request")

// errNoCatalog is returned by catalog endpoints when no database is open.
var errNoCatalog = errors.New("catalog not configured")

const maxDescriptionBytes = 256 * 1024

type describeReq struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

type canonicalizeReq struct {
	Category string
	Term     string
}

type canonicalizeResponse struct {
	Category   string   `json:"category"`
	Term       string   `json:"term"`
	Normalized string   `json:"normalized"`
	Canonical  string   `json:"canonical,omitempty"`
	Varieties  []string `json:"varieties,omitempty"`
	Matched    bool     `json:"matched"`
}

type parsePageReq struct {
	Source string
	Page   []byte
}

type lexiconResponse struct {
	Path       string                 `json:"path,omitempty"`
	Terms      int                    `json:"terms"`
	Categories []lexicon.CategoryInfo `json:"categories"`
}

type listProductsReq struct {
	Source string
	Limit  int
}

type productsResponse struct {
	Products []*product.Record `json:"products"`
}

func describeEndpoint(reg *lexicon.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*describeReq)
		if strings.TrimSpace(req.Text) == "" {
			return nil, fmt.Errorf("%w: text is empty", errInvalid)
		}
		if len(req.Text) > maxDescriptionBytes {
			return nil, fmt.Errorf("%w: text too long (max %d bytes)", errInvalid, maxDescriptionBytes)
		}
		d := product.Describe(req.Text, req.Title, reg.Current())
		return &d, nil
	}
}

// canonicalizeEndpoint resolves one term. For the variety category the
// term is tokenized first, so a listing resolves to several varieties.
func canonicalizeEndpoint(reg *lexicon.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*canonicalizeReq)
		cat, err := lexicon.ParseCategory(req.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalid, err)
		}
		lex := reg.Current()
		resp := &canonicalizeResponse{
			Category:   string(cat),
			Term:       req.Term,
			Normalized: textnorm.Canonicalize(req.Term),
		}
		switch cat {
		case lexicon.Variety:
			resp.Varieties = lex.NormalizeVariety(req.Term)
			resp.Matched = len(resp.Varieties) > 0
			if resp.Matched {
				resp.Canonical = strings.Join(resp.Varieties, product.VarietySeparator)
			}
		case lexicon.Country:
			resp.Canonical = product.ResolveCountries(lex, req.Term, "")
			resp.Matched = resp.Canonical != ""
		default:
			resp.Canonical, resp.Matched = lex.Canonicalize(cat, req.Term)
		}
		return resp, nil
	}
}

func parsePageEndpoint(reg *lexicon.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*parsePageReq)
		a, err := shop.Get(req.Source)
		if err != nil {
			return nil, err
		}
		if len(req.Page) == 0 {
			return nil, fmt.Errorf("%w: empty page", errInvalid)
		}
		return a.Parse(req.Page, reg.Current())
	}
}

func lexiconEndpoint(reg *lexicon.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		lex := reg.Current()
		return &lexiconResponse{
			Path:       reg.Path(),
			Terms:      lex.TermCount(),
			Categories: lex.Stats(),
		}, nil
	}
}

func listProductsEndpoint(store *catalog.Store) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		if store == nil {
			return nil, errNoCatalog
		}
		req := request.(*listProductsReq)
		list, err := store.List(ctx, req.Source, req.Limit)
		if err != nil {
			return nil, err
		}
		return &productsResponse{Products: list}, nil
	}
}
