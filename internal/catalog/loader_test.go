package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_FullDirectory(t *testing.T) {
	dir := t.TempDir()

	writeTable(t, dir, salonFile, `Model;Pojazd;Silnik;Cena
# dealer prices
Infernus;Infernus GT;V8 (5.0dm3);1,250,000
Infernus;Infernus;R6 (3.0dm3);$900 000
Sultan;Sultan;R4 (2.0dm3);350000
`)
	writeTable(t, dir, engineFile, `Modele;From;To;Cena
Infernus, Infernus Kakimoto;3,0;4.0;120 000
Infernus, Infernus Kakimoto;4.0;5.0;180000
`)
	writeTable(t, dir, visualIDFile, `Id;Cena
200;45000

1079;52 500
`)
	writeTable(t, dir, visualNameFile, `Key;Cena
neon podwozia;30000
kolor_swiatel:ocean;25,000
`)
	writeTable(t, dir, mechFile, `Key;Cena
turbo:v2;95000
gwintowane zawieszenie;40000
`)
	writeTable(t, dir, bodykitFile, `BaseModel;Name;Level;Cena
Infernus;GT;45;250000
Spoiler;Aero III;30;90000
`)

	cat, err := Load(dir)
	require.NoError(t, err)

	assert.Len(t, cat.Salon, 3)
	assert.Equal(t, int64(1250000), cat.Salon[0].Price)
	assert.Equal(t, int64(900000), cat.Salon[1].Price)

	require.Len(t, cat.EngineUpgrades, 2)
	assert.Equal(t, 3.0, cat.EngineUpgrades[0].From)
	assert.Equal(t, []string{"infernus", "infernus kakimoto"}, cat.EngineUpgrades[0].Keys)

	assert.Equal(t, int64(45000), cat.VisualByID[200])
	assert.Equal(t, int64(52500), cat.VisualByID[1079])

	assert.Equal(t, int64(25000), cat.VisualByName["kolor_swiatel:ocean"])
	assert.Equal(t, int64(95000), cat.MechByKey["turbo:v2"])

	row, ok := cat.Bodykit("Infernus", "GT")
	require.True(t, ok)
	assert.Equal(t, 45, row.Level)
}

func TestLoad_MissingFilesAreEmptyTables(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, mechFile, "turbo:v2;95000\n")

	cat, err := Load(dir)
	require.NoError(t, err)

	assert.Empty(t, cat.Salon)
	assert.Empty(t, cat.EngineUpgrades)
	assert.Empty(t, cat.Bodykits)
	assert.Empty(t, cat.VisualByID)
	assert.Len(t, cat.MechByKey, 1)
}

func TestLoad_CommaSeparatorAccepted(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, visualIDFile, "200,45000\n")

	cat, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(45000), cat.VisualByID[200])
}

func TestLoad_MechKeysAreFolded(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, mechFile, "Zmiana napędu:4x4;150000\n")

	cat, err := Load(dir)
	require.NoError(t, err)

	_, ok := cat.MechPrice("zmiana napedu:4x4")
	assert.True(t, ok)
}

func TestReadDelimited_SkipsJunk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv")
	require.NoError(t, os.WriteFile(path, []byte("# comment\n\nKey;Cena\na;1\n"), 0o644))

	rows, err := readDelimited(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "1"}, rows[0])
}
