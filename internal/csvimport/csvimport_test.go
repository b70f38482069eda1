package csvimport

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuotedCommasAndNewlines(t *testing.T) {
	records, err := Parse(strings.NewReader("\"a,b\"\n\"c\nd\""))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a,b"}, {"c\nd"}}, records)
}

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want [][]string
	}{
		{"simple", "a,b,c\n1,2,3\n", [][]string{{"a", "b", "c"}, {"1", "2", "3"}}},
		{"no trailing newline", "a,b\n1,2", [][]string{{"a", "b"}, {"1", "2"}}},
		{"crlf", "a,b\r\n1,2\r\n", [][]string{{"a", "b"}, {"1", "2"}}},
		{"doubled quotes", `"say ""hi""",x` + "\n", [][]string{{`say "hi"`, "x"}}},
		{"empty fields", "a,,c\n,,\n", [][]string{{"a", "", "c"}, {"", "", ""}}},
		{"blank lines skipped", "a\n\n\r\nb\n", [][]string{{"a"}, {"b"}}},
		{"quoted empty kept", "\"\"\n", [][]string{{""}}},
		{"bom", "\uFEFFID,Name\n1,x\n", [][]string{{"ID", "Name"}, {"1", "x"}}},
		{"crlf inside quotes", "\"a\r\nb\",c\r\n", [][]string{{"a\r\nb", "c"}}},
		{"quote mid field", `ab"c,d` + "\n", [][]string{{`ab"c`, "d"}}},
		{"empty input", "", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(c.in))
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, err := Parse(strings.NewReader("a,b\n\"oops,c\nd\n"))
	require.ErrorIs(t, err, ErrUnterminatedQuote)
	assert.Contains(t, err.Error(), "line 2")
}

const export = "\uFEFFID,Type,Name,Published,Is featured?,Short description,Description,Sale price,Regular price,Categories,Images,External URL,Button text\r\n" +
	"101,external,Netflix Premium,1,1,4K screens,\"Line one\\nLine two, with comma\",199,649,\"OTT > Netflix, Streaming\",\"https://img/1.jpg, https://img/2.jpg\",https://buy.example/netflix,Buy now\r\n" +
	"102,external,ChatGPT Plus,0,0,,,\"₹1,299.00\",\"₹1,999\",AI Tools,,,https://buy.example/chatgpt\r\n" +
	"103,external,,1,0,,,10,20,OTT,,,\r\n" +
	"abc,external,Broken,1,0,,,10,20,OTT,,,\r\n" +
	"104,external,Canva Pro,1,0,,,,499,Design,,,\r\n" +
	"105,external,Bad Price,1,0,,,cheap,20,OTT,,,\r\n"

func TestImport(t *testing.T) {
	res, err := Import(strings.NewReader(export))
	require.NoError(t, err)

	require.Len(t, res.Products, 3)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, res.Problems, 3)
	assert.Contains(t, res.Problems[0], "line 4")
	assert.Contains(t, res.Problems[1], `invalid id "abc"`)
	assert.Contains(t, res.Problems[2], "line 7")

	netflix := res.Products[0]
	assert.Equal(t, 2, netflix.Line)
	p := netflix.Product
	require.NotNil(t, p.LegacyID)
	assert.Equal(t, int64(101), *p.LegacyID)
	assert.Equal(t, "Netflix Premium", p.Name)
	assert.Equal(t, "4K screens", p.Description)
	assert.Equal(t, "Line one\nLine two, with comma", p.LongDescription)
	assert.Equal(t, "OTT", p.Category)
	assert.Equal(t, "https://img/1.jpg", p.ImageURL)
	assert.True(t, p.SalePrice.Equal(decimal.NewFromInt(199)))
	assert.True(t, p.RegularPrice.Equal(decimal.NewFromInt(649)))
	assert.Equal(t, "https://buy.example/netflix", p.PurchaseURL)
	assert.True(t, p.Published)
	assert.True(t, p.Featured)

	chatgpt := res.Products[1].Product
	assert.False(t, chatgpt.Published)
	assert.True(t, chatgpt.SalePrice.Equal(decimal.RequireFromString("1299")))
	assert.True(t, chatgpt.RegularPrice.Equal(decimal.NewFromInt(1999)))
	assert.Equal(t, "https://buy.example/chatgpt", chatgpt.PurchaseURL)

	canva := res.Products[2].Product
	assert.True(t, canva.SalePrice.Equal(decimal.NewFromInt(499)), "missing sale price falls back to regular")
}

func TestImportRequiresColumns(t *testing.T) {
	_, err := Import(strings.NewReader("Title,Price\nx,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumns)

	_, err = Import(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestImportWithoutPublishedColumnDefaultsToPublished(t *testing.T) {
	res, err := Import(strings.NewReader("id,name\n7,Spotify\n"))
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.True(t, res.Products[0].Product.Published)
}

func TestParsePrice(t *testing.T) {
	cases := map[string]string{
		"":           "0",
		"199":        "199",
		"₹1,299.50":  "1299.5",
		"Rs. 2,000":  "2000",
		" INR 45 ":   "45",
		"99.990":     "99.99",
	}
	for in, want := range cases {
		got, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%q -> %s", in, got)
	}

	_, err := ParsePrice("free")
	assert.Error(t, err)
	_, err = ParsePrice("-5")
	assert.Error(t, err)
	_, err = ParsePrice("99.995")
	assert.Error(t, err)
}
