package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"Altura", "Estado Contentor"},
				Records: [][]string{
					{"0.75", "Armazenado"},
					{"1.50", "Fora do Armazém"},
				},
			},
			want: "Altura,Estado Contentor\n0.75,Armazenado\n1.50,Fora do Armazém\n",
		},
		{
			name: "bom prefix",
			options: WriteOptions{
				Headers:   []string{"a"},
				Records:   [][]string{{"1"}},
				BOMPrefix: true,
			},
			want: "\xEF\xBB\xBFa\n1\n",
		},
		{
			name: "append skips headers and bom",
			options: WriteOptions{
				Headers:   []string{"a"},
				Records:   [][]string{{"2"}},
				Append:    true,
				BOMPrefix: true,
			},
			want: "2\n",
		},
		{
			name: "quotes cells that need escaping",
			options: WriteOptions{
				Headers: []string{"name"},
				Records: [][]string{{`piso "A", ala 2`}},
			},
			want: "name\n\"piso \"\"A\"\", ala 2\"\n",
		},
		{
			name:    "no headers no records",
			options: WriteOptions{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tt.options))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVWriterWriteCSV(t *testing.T) {
	base := t.TempDir()
	writer := NewCSVWriter(base)

	err := writer.WriteCSV("exports/slots.csv", WriteOptions{
		Headers: []string{"Altura", "Estado Contentor"},
		Records: [][]string{{"0.75", "Armazenado"}},
	})
	require.NoError(t, err)

	// Relative paths resolve against the base directory, creating
	// intermediate directories as needed.
	content, err := os.ReadFile(filepath.Join(base, "exports", "slots.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Altura,Estado Contentor\n0.75,Armazenado\n", string(content))
}

func TestCSVWriterAbsolutePath(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(t.TempDir(), "out.csv")
	writer := NewCSVWriter(base)

	require.NoError(t, writer.WriteCSV(target, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}}}))

	_, err := os.Stat(target)
	assert.NoError(t, err, "absolute paths must not be rebased")
}

func TestCSVWriterEmptyBaseUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter("")

	target := filepath.Join(dir, "cwd.csv")
	require.NoError(t, writer.WriteCSV(target, WriteOptions{Records: [][]string{{"x"}}}))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(content))
}

func TestCSVWriterWriteSimpleCSV(t *testing.T) {
	base := t.TempDir()
	writer := NewCSVWriter(base)

	require.NoError(t, writer.WriteSimpleCSV("simple.csv", []string{"h"}, [][]string{{"v"}}))

	content, err := os.ReadFile(filepath.Join(base, "simple.csv"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, utf8BOM), "simple writes carry the Excel BOM")
	assert.Equal(t, "h\nv\n", strings.TrimPrefix(string(content), string(utf8BOM)))
}

func TestCSVWriterAppendToCSV(t *testing.T) {
	base := t.TempDir()
	writer := NewCSVWriter(base)

	require.NoError(t, writer.WriteSimpleCSV("log.csv", []string{"h"}, [][]string{{"1"}}))
	require.NoError(t, writer.AppendToCSV("log.csv", [][]string{{"2"}, {"3"}}))

	file, err := os.Open(filepath.Join(base, "log.csv"))
	require.NoError(t, err)
	defer file.Close()

	// Skip the BOM before parsing.
	var bom [3]byte
	_, err = file.Read(bom[:])
	require.NoError(t, err)

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"h"}, {"1"}, {"2"}, {"3"}}, rows)
}

func TestCSVWriterOverwrites(t *testing.T) {
	base := t.TempDir()
	writer := NewCSVWriter(base)

	require.NoError(t, writer.WriteSimpleCSV("report.csv", []string{"h"}, [][]string{{"old"}}))
	require.NoError(t, writer.WriteSimpleCSV("report.csv", []string{"h"}, [][]string{{"new"}}))

	content, err := os.ReadFile(filepath.Join(base, "report.csv"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "old")
	assert.Contains(t, string(content), "new")
}
