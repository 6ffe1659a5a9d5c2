package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/inodb/vibe-contam/internal/maf"
	"github.com/inodb/vibe-contam/internal/vcf"
)

// sniffSize is how much of the input is inspected to detect its format.
const sniffSize = 4096

// inputParser closes the opened input file along with its parser.
type inputParser struct {
	vcf.VariantParser
	file io.Closer
}

func (p *inputParser) Close() error {
	err := p.VariantParser.Close()
	if p.file != nil {
		if cerr := p.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// openInput opens path ("-" for stdin) and creates the parser for format.
// An empty format is detected from the file name, then from the content
// buffered by the reader the parser goes on to consume.
func openInput(path, format string) (vcf.VariantParser, string, error) {
	switch format {
	case "", "vcf", "maf":
	default:
		return nil, "", &usageError{fmt.Errorf("unknown input format %q, use --input-format vcf or maf", format)}
	}

	var (
		src  io.Reader = os.Stdin
		file *os.File
	)
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("open input file: %w", err)
		}
		src, file = f, f
	}

	r := bufio.NewReaderSize(src, 2*sniffSize)
	if format == "" {
		format = detectInputFormat(path, r)
	}

	parser, err := newParser(r, format)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, "", err
	}

	p := &inputParser{VariantParser: parser}
	if file != nil {
		p.file = file
	}
	return p, format, nil
}

func newParser(r io.Reader, format string) (vcf.VariantParser, error) {
	if format == "maf" {
		p, err := maf.NewParserFromReader(r)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	p, err := vcf.NewParserFromReader(r)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// detectInputFormat detects the input format from the file name, falling
// back to the leading bytes buffered in r. Gzip content is inflated first.
func detectInputFormat(path string, r *bufio.Reader) string {
	name := strings.TrimSuffix(strings.ToLower(filepath.Base(path)), ".gz")
	switch {
	case strings.HasSuffix(name, ".vcf"):
		return "vcf"
	case strings.HasSuffix(name, ".maf"),
		name == "data_mutations.txt", // cBioPortal
		name == "data_mutations_extended.txt":
		return "maf"
	}

	head, _ := r.Peek(sniffSize)
	if len(head) >= 2 && head[0] == 0x1f && head[1] == 0x8b {
		head = inflateHead(head)
	}

	content := string(head)
	if strings.HasPrefix(content, "##fileformat=VCF") || strings.HasPrefix(content, "#CHROM") {
		return "vcf"
	}
	if strings.Contains(content, "Hugo_Symbol") && strings.Contains(content, "Chromosome") {
		return "maf"
	}
	return "vcf"
}

// inflateHead decompresses as much of a gzip prefix as it holds.
func inflateHead(head []byte) []byte {
	zr, err := gzip.NewReader(bytes.NewReader(head))
	if err != nil {
		return nil
	}
	defer zr.Close()

	out := make([]byte, sniffSize)
	n, _ := io.ReadFull(zr, out)
	return out[:n]
}
