package output

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-contam/internal/contam"
)

func TestResultsJSON_RoundTrip(t *testing.T) {
	results := []contam.ContamProbResult{
		{ContaminationLevel: 0.001, LogLikelihood: -2.530876403912345},
		{ContaminationLevel: 0.1, LogLikelihood: -13.569444762000001},
		{ContaminationLevel: 0.299, LogLikelihood: math.Nextafter(-42.913904771, 0)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResultsJSON(&buf, results))
	assert.Contains(t, buf.String(), `"contamination_level": 0.001`)
	assert.Contains(t, buf.String(), `"log_likelihood"`)

	got, err := ReadResultsJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, results, got)
}

func TestResultsJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestReadResultsJSON_Invalid(t *testing.T) {
	_, err := ReadResultsJSON(strings.NewReader(`{"not": "an array"`))
	assert.ErrorContains(t, err, "decode results")
}

func TestVariantsJSON_RoundTrip(t *testing.T) {
	het, err := contam.NewVariantPosition("X", 100, 50, 25, contam.SNV, contam.HETEROZYGOUS)
	require.NoError(t, err)
	het.ContaminationLabel = contam.LabelNotRefNorAlt
	hom, err := contam.NewVariantPosition("1", 200, 30, 29, contam.INDEL, contam.HOMOZYGOUS)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteVariantsJSON(&buf, []*contam.VariantPosition{het, hom}))

	out := buf.String()
	assert.Contains(t, out, `"variant_type": "SNV"`)
	assert.Contains(t, out, `"zygosity": "HOMOZYGOUS"`)
	assert.Contains(t, out, `"contamination_label": "contam is not ref nor alt"`)
	assert.Equal(t, 1, strings.Count(out, "contamination_label"), "unset labels are omitted")

	got, err := ReadVariantsJSON(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, het, got[0])
	assert.Equal(t, hom, got[1])
}

func TestSummaryJSON(t *testing.T) {
	est := &contam.Estimate{BestLevel: 0.046, MaxLogLikelihood: -120.5, VariantCount: 12}

	s := NewSummary("sample.vcf.gz", est)
	assert.Equal(t, 4.6, s.ContaminationLevel)

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryJSON(&buf, s))

	out := buf.String()
	assert.Contains(t, out, `"vcf_file": "sample.vcf.gz"`)
	assert.Contains(t, out, `"contamination_level": 4.6`)
	assert.Contains(t, out, `"best_level": 0.046`)
	assert.Contains(t, out, `"variant_count": 12`)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.001, 0.1},
		{0.046, 4.6},
		{0.299, 29.9},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.in), "%v", tt.in)
	}
}
