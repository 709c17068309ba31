package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{name: "file only", args: []string{"notes.txt"}, want: options{file: "notes.txt"}},
		{
			name: "extend one unit",
			args: []string{"-extend", "units.json", "-unit", "Cells", "notes.txt"},
			want: options{file: "notes.txt", extendFile: "units.json", unit: "Cells"},
		},
		{name: "no file", args: nil, wantErr: true},
		{name: "two files", args: []string{"a.txt", "b.txt"}, wantErr: true},
		{name: "unit without extend", args: []string{"-unit", "Cells", "notes.txt"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadResult(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{
		"language": "en",
		"units": [{"name": "Cells", "concepts": ["membrane"], "flashcards": []}]
	}`), 0o600))

	result, err := readResult(valid)
	require.NoError(t, err)
	assert.Equal(t, "en", result.Language)
	require.Len(t, result.Units, 1)
	assert.Equal(t, "Cells", result.Units[0].Name)

	unnamed := filepath.Join(dir, "unnamed.json")
	require.NoError(t, os.WriteFile(unnamed, []byte(`{"units": [{"name": ""}]}`), 0o600))
	_, err = readResult(unnamed)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o600))
	_, err = readResult(broken)
	assert.Error(t, err)
}
