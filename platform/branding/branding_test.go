package branding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	p := Default()
	assert.Equal(t, "Papiers Express", p.Name)
	assert.Equal(t, "R.C.S Paris 990 924 201", p.RCS)
	assert.Equal(t, "39 rue Navier, 75017", p.AddressShort)
	assert.Equal(t, "0142596008", p.Phone)
	assert.Len(t, p.Services, 12)
	assert.InDelta(t, 0.20, p.VATRate, 1e-9)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "branding.yaml")
	require.NoError(t, os.WriteFile(path, []byte("phone: \"0600000000\"\n"), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0600000000", p.Phone)
	assert.Equal(t, "Papiers Express", p.Name)
}

func TestLoadRejectsInvalidVAT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "branding.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vat_rate: 1.5\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadWithoutPathUsesDefault(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}
