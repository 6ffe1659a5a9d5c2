package vcf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_FirstRecord(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "contam.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	v, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "X", v.Chrom)
	assert.Equal(t, int64(100), v.Pos)
	assert.Equal(t, "A", v.Ref)
	assert.Equal(t, "G", v.Alt)
	assert.Equal(t, 50.0, v.Qual)
	assert.True(t, v.IsPass())
	assert.Equal(t, "100", v.Info["DP"])
	assert.Equal(t, "GT:AD:DP", v.Format)
	assert.Equal(t, []string{"0/1:48,52:100"}, v.Samples)
	assert.Equal(t, []string{"NA12878"}, parser.SampleNames())
}

func TestParser_AllRecords(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "contam.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	count := 0
	for {
		v, err := parser.Next()
		require.NoError(t, err)
		if v == nil {
			break
		}
		count++
	}
	assert.Equal(t, 11, count)
}

func TestParser_Header(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "contam.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	header := parser.Header()
	require.NotEmpty(t, header)
	assert.Equal(t, "##fileformat=VCFv4.2", header[0])
	assert.True(t, strings.HasPrefix(header[len(header)-1], "#CHROM"))
}

func TestParser_Gzip(t *testing.T) {
	raw, err := os.ReadFile(findTestFile(t, "contam.vcf"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "contam.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	parser, err := NewParser(path)
	require.NoError(t, err)
	defer parser.Close()

	sites, _, err := ExtractSites(parser, SiteFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, sites, 7)
}

func TestParserFromReader_Gzip(t *testing.T) {
	raw, err := os.ReadFile(findTestFile(t, "contam.vcf"))
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	parser, err := NewParserFromReader(&buf)
	require.NoError(t, err)
	defer parser.Close()

	sites, _, err := ExtractSites(parser, SiteFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, sites, 7)
}

func TestParser_NoTrailingNewline(t *testing.T) {
	in := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nX\t5\t.\tA\tC\t.\tPASS\t."
	parser, err := NewParserFromReader(strings.NewReader(in))
	require.NoError(t, err)

	v, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(5), v.Pos)
	assert.Empty(t, v.Samples)

	v, err = parser.Next()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing header", "X\t5\t.\tA\tC\t.\tPASS\t.\n"},
		{"empty input", ""},
		{"short line", "#CHROM\tPOS\nX\t5\t.\tA\n"},
		{"bad position", "#CHROM\tPOS\nX\tfive\t.\tA\tC\t.\tPASS\t.\n"},
		{"bad quality", "#CHROM\tPOS\nX\t5\t.\tA\tC\tq\tPASS\t.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := NewParserFromReader(strings.NewReader(tt.in))
			if err == nil {
				_, err = parser.Next()
			}
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
		})
	}
}

func TestParser_MissingFile(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "nope.vcf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected 8 columns, found 7",
	}

	expected := "vcf parse error at line 42: expected 8 columns, found 7"
	assert.Equal(t, expected, err.Error())
}

func TestParseInfo(t *testing.T) {
	info := parseInfo("DP=10;SOMATIC;AF=0.5")
	assert.Equal(t, "10", info["DP"])
	assert.Equal(t, true, info["SOMATIC"])
	assert.Equal(t, "0.5", info["AF"])
	assert.Empty(t, parseInfo("."))
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
