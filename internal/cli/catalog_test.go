package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaurent/superette/internal/store"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func runCatalog(t *testing.T, rootOpts *RootOptions, args ...string) (*bytes.Buffer, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewCatalogCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestCatalogAdd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "superette.db")
	rootOpts := &RootOptions{Format: "text", DB: dbPath}

	buf, err := runCatalog(t, rootOpts, "add",
		"--barcode", "1234567890123",
		"--name", "Pain de mie",
		"--price", "2.50",
		"--category", "Boulangerie",
		"--stock", "50")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Added product 1: Pain de mie (1234567890123)")

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	p, err := s.GetProductByBarcode(context.Background(), "1234567890123")
	require.NoError(t, err)
	assert.Equal(t, "2.50", p.Price.StringFixed(2))
	assert.Equal(t, 50, p.Stock)
}

func TestCatalogAdd_InvalidPrice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "superette.db")
	rootOpts := &RootOptions{Format: "text", DB: dbPath}

	buf, err := runCatalog(t, rootOpts, "add",
		"--barcode", "1234567890123",
		"--name", "Pain de mie",
		"--price", "deux euros")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [INVALID_INPUT]")
}

func TestCatalogAdd_DuplicateBarcode(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "superette.db")
	rootOpts := &RootOptions{Format: "text", DB: dbPath}

	_, err := runCatalog(t, rootOpts, "add",
		"--barcode", "1234567890123", "--name", "Pain de mie", "--price", "2.50")
	require.NoError(t, err)

	buf, err := runCatalog(t, rootOpts, "add",
		"--barcode", "1234567890123", "--name", "Imposteur", "--price", "1.00")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [CONSTRAINT_VIOLATION]")
}

func TestCatalogList(t *testing.T) {
	dbPath := seededDB(t)
	rootOpts := &RootOptions{Format: "text", DB: dbPath}

	buf, err := runCatalog(t, rootOpts, "list")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "BARCODE")
	assert.Contains(t, output, "Pain de mie")
	assert.Contains(t, output, "Baguette")
}

func TestCatalogListJSON(t *testing.T) {
	dbPath := seededDB(t)
	rootOpts := &RootOptions{Format: "json", DB: dbPath}

	buf, err := runCatalog(t, rootOpts, "list")
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.([]interface{})
	require.True(t, ok, "data should be a product array")
	assert.Len(t, data, 8)
}

func TestCatalogUpdate_PartialFlags(t *testing.T) {
	dbPath := seededDB(t)
	rootOpts := &RootOptions{Format: "text", DB: dbPath}

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	p, err := s.GetProductByBarcode(context.Background(), "1234567890123")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	buf, err := runCatalog(t, rootOpts, "update", formatID(p.ID),
		"--price", "2.80", "--stock", "42")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Updated product")

	s, err = store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.80", got.Price.StringFixed(2))
	assert.Equal(t, 42, got.Stock)
	// Fields without a flag keep their value.
	assert.Equal(t, "Pain de mie", got.Name)
	assert.Equal(t, "Boulangerie", got.Category)
}

func TestCatalogUpdate_NotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "superette.db")
	rootOpts := &RootOptions{Format: "text", DB: dbPath}

	buf, err := runCatalog(t, rootOpts, "update", "404", "--stock", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [NOT_FOUND]")
}

func TestCatalogDelete(t *testing.T) {
	dbPath := seededDB(t)
	rootOpts := &RootOptions{Format: "text", DB: dbPath}

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	p, err := s.GetProductByBarcode(context.Background(), "8901234567890")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	buf, err := runCatalog(t, rootOpts, "delete", formatID(p.ID))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Deleted product")

	s, err = store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetProductByBarcode(context.Background(), "8901234567890")
	assert.True(t, store.IsNotFound(err))
}

func TestCatalogDelete_NotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "superette.db")
	rootOpts := &RootOptions{Format: "text", DB: dbPath}

	buf, err := runCatalog(t, rootOpts, "delete", "404")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [NOT_FOUND]")
}
