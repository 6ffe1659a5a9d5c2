// Package maf reads MAF (Mutation Annotation Format) files as a source of
// genotyped sites.
package maf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/inodb/vibe-contam/internal/vcf"
)

// Standard MAF column names
const (
	ColChromosome      = "Chromosome"
	ColStartPosition   = "Start_Position"
	ColReferenceAllele = "Reference_Allele"
	ColTumorSeqAllele1 = "Tumor_Seq_Allele1"
	ColTumorSeqAllele2 = "Tumor_Seq_Allele2"
	ColTDepth          = "t_depth"
	ColTRefCount       = "t_ref_count"
	ColTAltCount       = "t_alt_count"
	ColFilter          = "FILTER"
)

// sampleFormat is the FORMAT of the sample column synthesized per row.
const sampleFormat = "GT:AD:DP"

// ColumnIndices holds the indices of the MAF columns this parser reads.
// Optional columns are -1 when absent.
type ColumnIndices struct {
	Chromosome      int
	StartPosition   int
	ReferenceAllele int
	TumorSeqAllele1 int
	TumorSeqAllele2 int
	TDepth          int
	TRefCount       int
	TAltCount       int
	Filter          int
}

// Parser reads variants from a MAF file.
//
// Each row becomes a vcf.Variant with one synthesized sample so that MAF
// input goes through vcf.ExtractSites unchanged. The genotype is derived
// from the two tumor alleles and the depths from t_depth, t_ref_count and
// t_alt_count. Rows of files without a FILTER column are treated as PASS.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    ColumnIndices
	headerLine string
}

// NewParser creates a new MAF parser for the given file.
// Supports both plain MAF and gzipped MAF (.maf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maf file: %w", err)
	}

	p, err := newParser(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	p.file = file
	return p, nil
}

// NewParserFromReader creates a parser over a stream such as stdin, which
// may itself be gzip compressed.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	return newParser(r)
}

func newParser(r io.Reader) (*Parser, error) {
	p := &Parser{}

	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read maf header: %w", err)
	}

	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = br
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// parseHeader skips comments and reads the column header line.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return &ParseError{Line: p.lineNumber, Message: "no header line found"}
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p.headerLine = line
		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices locates the columns this parser needs.
func (p *Parser) parseColumnIndices(headerLine string) error {
	p.columns = ColumnIndices{
		Chromosome:      -1,
		StartPosition:   -1,
		ReferenceAllele: -1,
		TumorSeqAllele1: -1,
		TumorSeqAllele2: -1,
		TDepth:          -1,
		TRefCount:       -1,
		TAltCount:       -1,
		Filter:          -1,
	}

	for i, col := range strings.Split(headerLine, "\t") {
		switch col {
		case ColChromosome:
			p.columns.Chromosome = i
		case ColStartPosition:
			p.columns.StartPosition = i
		case ColReferenceAllele:
			p.columns.ReferenceAllele = i
		case ColTumorSeqAllele1:
			p.columns.TumorSeqAllele1 = i
		case ColTumorSeqAllele2:
			p.columns.TumorSeqAllele2 = i
		case ColTDepth:
			p.columns.TDepth = i
		case ColTRefCount:
			p.columns.TRefCount = i
		case ColTAltCount:
			p.columns.TAltCount = i
		case ColFilter:
			p.columns.Filter = i
		}
	}

	required := []struct {
		name  string
		index int
	}{
		{ColChromosome, p.columns.Chromosome},
		{ColStartPosition, p.columns.StartPosition},
		{ColReferenceAllele, p.columns.ReferenceAllele},
		{ColTumorSeqAllele1, p.columns.TumorSeqAllele1},
		{ColTumorSeqAllele2, p.columns.TumorSeqAllele2},
		{ColTAltCount, p.columns.TAltCount},
	}
	for _, r := range required {
		if r.index == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", r.name),
			}
		}
	}

	return nil
}

// Next reads the next variant from the MAF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*vcf.Variant, error) {
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine converts a MAF row into a Variant with one sample column.
func (p *Parser) parseLine(line string) (*vcf.Variant, error) {
	fields := strings.Split(line, "\t")

	field := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return fields[i]
	}

	minCols := max(p.columns.Chromosome, p.columns.StartPosition, p.columns.ReferenceAllele,
		p.columns.TumorSeqAllele1, p.columns.TumorSeqAllele2, p.columns.TAltCount)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	pos, err := strconv.ParseInt(field(p.columns.StartPosition), 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", field(p.columns.StartPosition)),
		}
	}

	ref := dashToEmpty(field(p.columns.ReferenceAllele))
	allele1 := dashToEmpty(field(p.columns.TumorSeqAllele1))
	allele2 := dashToEmpty(field(p.columns.TumorSeqAllele2))

	// Allele1 is normally the reference (het) or equal to Allele2 (hom).
	// Anything else is a 1/2 genotype with two ALT alleles.
	var alts []string
	var gt string
	refCount := field(p.columns.TRefCount)
	altCount := field(p.columns.TAltCount)
	var ad string
	switch allele1 {
	case ref:
		alts, gt, ad = []string{allele2}, "0/1", countOrDot(refCount)+","+countOrDot(altCount)
	case allele2:
		alts, gt, ad = []string{allele2}, "1/1", countOrDot(refCount)+","+countOrDot(altCount)
	default:
		alts, gt, ad = []string{allele1, allele2}, "1/2", countOrDot(refCount)+",.,"+countOrDot(altCount)
	}

	filter := vcf.FilterPass
	if p.columns.Filter >= 0 {
		filter = field(p.columns.Filter)
	}

	return &vcf.Variant{
		Chrom:   field(p.columns.Chromosome),
		Pos:     pos,
		ID:      ".",
		Ref:     ref,
		Alt:     strings.Join(alts, ","),
		Filter:  filter,
		Info:    make(map[string]interface{}),
		Format:  sampleFormat,
		Samples: []string{gt + ":" + ad + ":" + countOrDot(field(p.columns.TDepth))},
	}, nil
}

// dashToEmpty maps the MAF "-" placeholder for an absent allele to "".
func dashToEmpty(allele string) string {
	if allele == "-" {
		return ""
	}
	return allele
}

func countOrDot(s string) string {
	if s == "" || s == "NA" {
		return "."
	}
	return s
}

// Header returns the MAF header line.
func (p *Parser) Header() string {
	return p.headerLine
}

// Columns returns the parsed column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during MAF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maf parse error at line %d: %s", e.Line, e.Message)
}
