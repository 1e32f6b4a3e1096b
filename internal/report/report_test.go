package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ginjaninja78/file-processing-engine/internal/sales"
	"github.com/ginjaninja78/file-processing-engine/internal/watcher"
	"github.com/ginjaninja78/file-processing-engine/pkg/utils"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, ext, want string
	}{
		{"orders.txt", ".txt", "orders.done.txt"},
		{"/data/in/orders.txt", ".txt", "orders.done.txt"},
		{"a.txt.txt", ".txt", "a.txt.done.txt"},
		{"batch.dat", ".dat", "batch.done.dat"},
		{"orders.txt", "", "orders.done.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputName(tt.in, tt.ext))
			// Same input, same output, regardless of content or call count.
			assert.Equal(t, OutputName(tt.in, tt.ext), OutputName(tt.in, tt.ext))
		})
	}
}

func TestRender(t *testing.T) {
	got := Render(sales.Summary{
		ClientCount:       1,
		SellerCount:       1,
		TopSaleID:         "S1",
		LeastActiveSeller: "B",
		HasSales:          true,
	})

	want := "-> Number of Clients found in the file: 1\n" +
		"-> Number of Sellers found in the file: 1\n" +
		"-> Sales id of the biggest sale: S1\n" +
		"-> Name of the Seller that sold less items: B\n"
	assert.Equal(t, want, got)
}

func TestRender_NoSales(t *testing.T) {
	got := Render(sales.Summary{ClientCount: 2})
	assert.Contains(t, got, "-> Sales id of the biggest sale: none\n")
	assert.Contains(t, got, "-> Name of the Seller that sold less items: none\n")
}

func TestParse_RoundTrip(t *testing.T) {
	for _, s := range []sales.Summary{
		{ClientCount: 3, SellerCount: 2, TopSaleID: "10", LeastActiveSeller: "Paulo", HasSales: true},
		{ClientCount: 1},
	} {
		got, err := Parse(Render(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestParse_Incomplete(t *testing.T) {
	_, err := Parse("-> Number of Clients found in the file: 1\n")
	assert.Error(t, err)

	_, err = Parse("-> Number of Clients found in the file: x\n")
	assert.Error(t, err)
}

func TestWriter_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))
	w := NewWriter(utils.NewFileManager(fs), "/out", ".txt")

	s := sales.Summary{ClientCount: 1, SellerCount: 1, TopSaleID: "S1", LeastActiveSeller: "B", HasSales: true}
	path, err := w.Write("/in/orders.txt", s)
	require.NoError(t, err)
	assert.Equal(t, "/out/orders.done.txt", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, Render(s), string(data))
}

func TestWriter_WriteFailure(t *testing.T) {
	t.Run("missing destination", func(t *testing.T) {
		w := NewWriter(utils.NewFileManager(afero.NewMemMapFs()), "/out", ".txt")
		_, err := w.Write("orders.txt", sales.Summary{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrWriteFailure))
		assert.True(t, errors.Is(err, watcher.ErrDirectoryUnavailable))
	})

	t.Run("read-only destination", func(t *testing.T) {
		base := afero.NewMemMapFs()
		require.NoError(t, base.MkdirAll("/out", 0755))
		fs := afero.NewReadOnlyFs(base)
		w := NewWriter(utils.NewFileManager(fs), "/out", ".txt")

		_, err := w.Write("orders.txt", sales.Summary{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrWriteFailure))

		assert.False(t, errors.Is(err, watcher.ErrDirectoryUnavailable), "the directory itself is there")

		var we *WriteError
		require.True(t, errors.As(err, &we))
		assert.Equal(t, "write", we.Op)

		exists, _ := afero.Exists(base, "/out/orders.done.txt")
		assert.False(t, exists)
	})
}

func TestWriter_Ready(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(utils.NewFileManager(fs), "/out", ".txt")

	err := w.Ready()
	require.Error(t, err)
	assert.True(t, errors.Is(err, watcher.ErrDirectoryUnavailable))

	require.NoError(t, fs.MkdirAll("/out", 0755))
	assert.NoError(t, w.Ready())
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))
	w := NewWriter(utils.NewFileManager(fs), "/out", ".txt")

	_, err := w.Write("b.txt", sales.Summary{ClientCount: 2})
	require.NoError(t, err)
	_, err = w.Write("a.txt", sales.Summary{ClientCount: 1, TopSaleID: "S", LeastActiveSeller: "X", HasSales: true})
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/out/junk.done.txt", []byte("garbage"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/out/other.txt", []byte("ignored"), 0644))

	entries, skipped, err := Load(fs, "/out", ".txt")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.done.txt", entries[0].File)
	assert.Equal(t, "b.done.txt", entries[1].File)
	assert.Equal(t, []string{"junk.done.txt"}, skipped)
}

func TestWriteWorkbook(t *testing.T) {
	entries := []Entry{
		{File: "a.done.txt", Summary: sales.Summary{ClientCount: 1, SellerCount: 2, TopSaleID: "S1", LeastActiveSeller: "B", HasSales: true}},
		{File: "b.done.txt", Summary: sales.Summary{ClientCount: 4}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, entries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Report", "Clients", "Sellers", "Biggest Sale", "Least Active Seller"}, rows[0])
	assert.Equal(t, []string{"a.done.txt", "1", "2", "S1", "B"}, rows[1])
	assert.Equal(t, []string{"b.done.txt", "4", "0", "none", "none"}, rows[2])
}
