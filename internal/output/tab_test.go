package output

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-contam/internal/contam"
)

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	assert.Equal(t, "contamination_level\tlog_likelihood\n", buf.String())
}

func TestTabWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.Write(contam.ContamProbResult{ContaminationLevel: 0.046, LogLikelihood: -3.20735238519}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "0.046\t-3.20735238519\n", buf.String())
}

func TestTabWriter_WriteAll(t *testing.T) {
	results := []contam.ContamProbResult{
		{ContaminationLevel: 0.001, LogLikelihood: -42.913904771123456},
		{ContaminationLevel: 0.002, LogLikelihood: -13.569444762},
		{ContaminationLevel: 0.003, LogLikelihood: -2.5308764039},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTabWriter(&buf).WriteAll(results))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "contamination_level\tlog_likelihood", lines[0])

	for i, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 2)

		level, err := strconv.ParseFloat(fields[0], 64)
		require.NoError(t, err)
		ll, err := strconv.ParseFloat(fields[1], 64)
		require.NoError(t, err)

		assert.Equal(t, results[i].ContaminationLevel, level)
		assert.Equal(t, results[i].LogLikelihood, ll, "full precision is kept")
	}
}
