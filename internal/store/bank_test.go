package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBank() []TemplateBankEntry {
	return []TemplateBankEntry{
		{TemplateID: 7, Mass1: 1.42, Mass2: 1.38, Spin1z: 0.02, Spin2z: -0.01},
		{TemplateID: 9, Mass1: 30.5, Mass2: 25.1, Spin1z: 0.31, Spin2z: 0.11},
	}
}

func TestOpenBank(t *testing.T) {
	path := newBankFile(t, testBank())

	b, err := OpenBank(path)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, int64(2), b.Size)

	entry, err := b.Template(9)
	require.NoError(t, err)
	assert.Equal(t, 30.5, entry.Mass1)
	assert.Equal(t, 25.1, entry.Mass2)
	assert.Equal(t, 0.31, entry.Spin1z)
}

func TestBankMissingTemplate(t *testing.T) {
	path := newBankFile(t, testBank())

	b, err := OpenBank(path)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Template(42)
	require.Error(t, err)

	var joinErr *JoinResolutionError
	require.True(t, errors.As(err, &joinErr))
	assert.Contains(t, joinErr.Error(), "template_id 42")
	assert.Equal(t, path, joinErr.Path)
}

func TestOpenBankMissingFile(t *testing.T) {
	_, err := OpenBank("/nonexistent/bank.sqlite")
	require.Error(t, err)

	var accessErr *StoreAccessError
	require.True(t, errors.As(err, &accessErr))
}

func TestOpenBankMissingTable(t *testing.T) {
	path := rawSQLiteFile(t, "bank.sqlite", "CREATE TABLE other (x INTEGER);")

	_, err := OpenBank(path)
	require.Error(t, err)

	var accessErr *StoreAccessError
	require.True(t, errors.As(err, &accessErr))
}
