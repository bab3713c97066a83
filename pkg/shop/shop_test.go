package shop

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
	"github.com/hazyhaar/coffee-lexicon/pkg/product"
)

func defaultLexicon(t *testing.T) *lexicon.Lexicon {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	return lex
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestRegistry(t *testing.T) {
	a, err := Get("bargain")
	require.NoError(t, err)
	assert.Equal(t, "bargain", a.ID())
	assert.NotEmpty(t, a.SitemapURL())

	_, err = Get("nope")
	assert.True(t, errors.Is(err, ErrUnknownSource))

	ids := make([]string, 0)
	for _, a := range All() {
		ids = append(ids, a.ID())
	}
	assert.Contains(t, ids, "bargain")
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestBargainIsProductURL(t *testing.T) {
	a, err := Get("bargain")
	require.NoError(t, err)
	assert.True(t, a.IsProductURL("https://www.bargain-cafe.com/products/kenya-aa"))
	assert.False(t, a.IsProductURL("https://www.bargain-cafe.com/categories/beans"))
	assert.False(t, a.IsProductURL("https://www.bargain-cafe.com/"))
}

func TestBargainParse(t *testing.T) {
	a, err := Get("bargain")
	require.NoError(t, err)

	rec, err := a.Parse(readFixture(t, "bargain_product.html"), defaultLexicon(t))
	require.NoError(t, err)

	assert.Equal(t, "bargain", rec.Source)
	assert.Equal(t, "https://www.bargain-cafe.com/products/colombia-sweet-realm", rec.URL)
	assert.Equal(t, "colombia-sweet-realm", rec.ExternalID)
	assert.Equal(t, "哥倫比亞 甜蜜國度莊園 Sweet Realm 咖啡豆", rec.Title)
	assert.Equal(t, product.SingleOrigin, rec.BeanType)

	assert.Equal(t, "水洗", rec.Raw.Process)
	assert.Equal(t, "淺中", rec.Raw.Roast)
	assert.Equal(t, "卡斯提優（Castillo）、卡度拉", rec.Raw.Variety)
	assert.Equal(t, "哥倫比亞", rec.Raw.Origin)
	assert.Equal(t, "薇拉 Huila", rec.Raw.Region)
	assert.Equal(t, "甜蜜國度莊園", rec.Raw.Farm)

	assert.Equal(t, "水洗（Washed）", rec.Canonical.Process)
	assert.Equal(t, "淺中焙（Light-medium）", rec.Canonical.Roast)
	assert.Equal(t, []string{"卡斯提優（Castillo）", "卡度拉（Caturra）"}, rec.Canonical.Variety)
	assert.Equal(t, "哥倫比亞（Colombia）", rec.Canonical.Country)

	require.NotNil(t, rec.Price)
	assert.Equal(t, 550.0, *rec.Price)
	require.NotNil(t, rec.PriceOriginal)
	assert.Equal(t, 600.0, *rec.PriceOriginal)
	require.NotNil(t, rec.WeightG)
	assert.Equal(t, 200, *rec.WeightG)
	require.NotNil(t, rec.InStock)
	assert.True(t, *rec.InStock)
}

func TestBargainParseIgnoresScriptText(t *testing.T) {
	a, err := Get("bargain")
	require.NoError(t, err)
	rec, err := a.Parse(readFixture(t, "bargain_product.html"), defaultLexicon(t))
	require.NoError(t, err)
	assert.NotContains(t, rec.Raw.Variety, "不該出現")
	assert.NotEqual(t, "註解", rec.Raw.Region)
}

func TestBargainParseBlend(t *testing.T) {
	page := []byte(`<html><head>
<meta property="og:url" content="https://www.bargain-cafe.com/products/house-blend/">
</head><body>
<h1>招牌配方豆</h1>
<div class="ProductDetail-description-content">
<p>產地：巴西、哥斯大黎加</p>
<p>烘焙度：中深焙</p>
</div>
<script>app.value('product', JSON.parse('{\"variations\":[{\"price\":{\"dollars\":450},\"fields\":[{\"name\":\"半磅\"}],\"quantity\":2}]}'));</script>
</body></html>`)

	a, err := Get("bargain")
	require.NoError(t, err)
	rec, err := a.Parse(page, defaultLexicon(t))
	require.NoError(t, err)

	assert.Equal(t, "house-blend", rec.ExternalID)
	assert.Equal(t, product.Blend, rec.BeanType)
	assert.Equal(t, "巴西", rec.Raw.Origin)
	assert.Equal(t, "巴西（Brazil）,哥斯大黎加（Costa Rica）", rec.Canonical.Country)
	assert.Equal(t, "中深焙（Medium-dark）", rec.Canonical.Roast)
	assert.Equal(t, []string{}, rec.Canonical.Variety)

	require.NotNil(t, rec.WeightG)
	assert.Equal(t, 227, *rec.WeightG)
	require.NotNil(t, rec.PriceOriginal)
	assert.Equal(t, 450.0, *rec.PriceOriginal)
}

func TestBargainParseWithoutProductJSON(t *testing.T) {
	a, err := Get("bargain")
	require.NoError(t, err)
	_, err = a.Parse([]byte(`<html><body><h1>Gift card</h1></body></html>`), defaultLexicon(t))
	assert.ErrorIs(t, err, ErrNoProductJSON)
}

func TestExtractProductJSONMalformed(t *testing.T) {
	_, err := extractProductJSON([]byte(`app.value('product', JSON.parse('{not json}'));`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoProductJSON))
}

func TestUnescapeJSString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`{\"a\":1}`, `{"a":1}`},
		{`it\'s`, "it's"},
		{`a\nb\tc`, "a\nb\tc"},
		{`\u534a\u78c5`, "半磅"},
		{`\x41\x42`, "AB"},
		{`\ud83d\ude00`, "\U0001F600"},
		{`back\\slash`, `back\slash`},
		{"line\\\ncontinued", "linecontinued"},
	}
	for _, tt := range tests {
		got, err := unescapeJSString(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{`trailing\`, `\u12`, `\xZZ`, `\uzzzz`} {
		_, err := unescapeJSString(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeightFromText(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"200克", 200, true},
		{"200克 / 熟豆（無研磨）", 200, true},
		{"１００ｇ", 100, true},
		{"250 grams", 250, true},
		{"1kg", 1000, true},
		{"0.5 KG", 500, true},
		{"1/4磅", 113, true},
		{"四分之一磅", 113, true},
		{"半磅", 227, true},
		{"2磅", 908, true},
		{"磅裝", 454, true},
		{"規格 500", 500, true},
		{"熟豆（無研磨）", 0, false},
		{"第1批", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := weightFromText(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func ptr[T any](v T) *T { return &v }

func TestCheapestOffer(t *testing.T) {
	p := &productData{Variations: []variation{
		{Price: &money{Dollars: ptr(900.0)}, Fields: []variationField{{Name: "半磅"}}, Quantity: ptr(1.0)},
		{Price: &money{Dollars: ptr(800.0)}, PriceSale: &money{Dollars: ptr(700.0)}, Fields: []variationField{{Name: "Whole"}}, FieldsTranslations: []byte(`{"zh-hant":["1磅"]}`)},
		{Price: &money{Dollars: ptr(700.0)}, Fields: []variationField{{Name: "200g"}}, Quantity: ptr(4.0)},
		{Fields: []variationField{{Name: "no price"}}},
	}}

	got := cheapestOffer(p)
	require.NotNil(t, got.Price)
	assert.Equal(t, 700.0, *got.Price)
	assert.Equal(t, 800.0, *got.PriceOriginal)
	assert.Equal(t, 454, *got.WeightG)
	assert.False(t, *got.InStock)
}

func TestCheapestOfferEmpty(t *testing.T) {
	got := cheapestOffer(&productData{})
	assert.Nil(t, got.Price)
	assert.Nil(t, got.WeightG)
	assert.Nil(t, got.InStock)
}

func TestFinalPriceZeroSale(t *testing.T) {
	v := variation{Price: &money{Dollars: ptr(500.0)}, PriceSale: &money{Dollars: ptr(0.0)}}
	got, ok := v.finalPrice()
	assert.True(t, ok)
	assert.Equal(t, 500.0, got)
}

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"衣索比亞 耶加雪菲 水洗", false},
		{"濾掛咖啡 10 入", true},
		{"精選組合包", true},
		{"肯亞 + 哥倫比亞", true},
		{"A | B", true},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldSkip(tt.title, DefaultSkipKeywords), tt.title)
	}
	assert.False(t, ShouldSkip("anything", []string{""}))
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "哥倫比亞 甜蜜國度莊園 Sweet Realm 咖啡豆", PageTitle(readFixture(t, "bargain_product.html")))
	assert.Equal(t, "From OG", PageTitle([]byte(`<html><head><meta property="og:title" content="From OG"></head></html>`)))
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"組合", "濾掛"}, ParseKeywords(" 組合, ,濾掛 "))
	assert.Nil(t, ParseKeywords(""))
}
