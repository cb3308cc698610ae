package cardparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mta-tools/wycena/internal/model"
)

const sampleCard = `VUID
1079
Model
Infernus GT Aero III (411)
Silnik
V8 (5.0dm3)
Tuning wizualny
Felgi (200), Poszerzenia (2,2), Neon podwozia
Tuning mechaniczny
Turbo (V2), Gwint. zawieszenie, CB Radio
Kolor świateł
Ocean - Limitowane
Kolor licznika
Czerwony
`

func TestParse_FullCard(t *testing.T) {
	card, err := Parse(sampleCard)
	require.NoError(t, err)

	assert.Equal(t, 1079, card.VUID)
	assert.Equal(t, "Infernus GT Aero III (411)", card.ModelRaw)
	assert.Equal(t, "V8 (5.0dm3)", card.EngineRaw)
	assert.Equal(t, "Infernus", card.BaseModel)
	assert.Equal(t, 411, card.ModelID)
	assert.Equal(t, "GT", card.BodykitMainName)
	assert.Equal(t, "Aero III", card.BodykitAeroName)

	require.Len(t, card.VisualTuning, 3)
	assert.Equal(t, model.VisualItem{ID: 200, Name: "Felgi", Raw: "Felgi (200)"}, card.VisualTuning[0])
	assert.Equal(t, "Poszerzenia (2,2)", card.VisualTuning[1].Name)
	assert.False(t, card.VisualTuning[1].IDKeyed())
	assert.Equal(t, "Neon podwozia", card.VisualTuning[2].Name)

	assert.Equal(t, []string{"Turbo (V2)", "Gwint. zawieszenie", "CB Radio"}, card.MechanicalTuningRaw)
	assert.Equal(t, "Ocean - Limitowane", card.LightsColorRaw)
	assert.Equal(t, "Czerwony", card.DashboardColorRaw)
}

func TestParse_SameLineLayout(t *testing.T) {
	card, err := Parse(`VUID 55
Model Sultan (560)
Silnik R4 (2.0dm3)
`)
	require.NoError(t, err)
	assert.Equal(t, 55, card.VUID)
	assert.Equal(t, "Sultan", card.BaseModel)
	assert.Equal(t, 560, card.ModelID)
	assert.Empty(t, card.BodykitMainName)
	assert.Empty(t, card.VisualTuning)
	assert.Empty(t, card.MechanicalTuningRaw)
}

func TestParse_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no vuid", "Model X\nSilnik V8 (5.0dm3)", "no VUID"},
		{"no model", "VUID 1\nSilnik V8 (5.0dm3)", "no Model"},
		{"no engine", "VUID 1\nModel X", "no Silnik"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_NBSPTolerated(t *testing.T) {
	card, err := Parse("VUID 7\nModel Sultan\nSilnik R4 (2.0dm3)\n")
	require.NoError(t, err)
	assert.Equal(t, 7, card.VUID)
	assert.Equal(t, "Sultan", card.BaseModel)
}

func TestParse_EmptyColorFieldLeftEmpty(t *testing.T) {
	// lights color line is empty; the very next line is the dashboard
	// label, which must not be stored as the lights color
	card, err := Parse(`VUID 1
Model Sultan
Silnik R4 (2.0dm3)
Kolor świateł
Kolor licznika
Niebieski
`)
	require.NoError(t, err)
	assert.Empty(t, card.LightsColorRaw)
	assert.Equal(t, "Niebieski", card.DashboardColorRaw)
}

func TestParse_ColorFallbackSameLineWithoutDiacritics(t *testing.T) {
	card, err := Parse(`VUID 1
Model Sultan
Silnik R4 (2.0dm3)
Kolor swiatel Ocean - Limitowane
`)
	require.NoError(t, err)
	assert.Equal(t, "Ocean - Limitowane", card.LightsColorRaw)
}

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A (1,2), B", []string{"A (1,2)", "B"}},
		{"Poszerzenia (2,2), Neon, Felgi (200)", []string{"Poszerzenia (2,2)", "Neon", "Felgi (200)"}},
		{"solo", []string{"solo"}},
		{" , ,a, ", []string{"a"}},
		{"", nil},
		{"A (1, (2,3)), B", []string{"A (1, (2,3))", "B"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitTopLevel(tt.in), "input %q", tt.in)
	}
}

func TestEngineDisplacementDm3(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"V8 (5.0dm3)", 5.0, true},
		{"R4 (2,0dm3)", 2.0, true},
		{"V12 (6.2 dm3)", 6.2, true},
		{"Elektryczny", 0, false},
		{"V8 (dm3)", 0, false},
	}
	for _, tt := range tests {
		got, ok := EngineDisplacementDm3(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
		}
	}
}

func TestParseColorWithRarity(t *testing.T) {
	tests := []struct {
		in         string
		wantName   string
		wantRarity string
	}{
		{"Ocean - Limitowane", "Ocean", model.RarityLimited},
		{"Zielony - Unikatowe", "Zielony", model.RarityUnique},
		{"Fiolet - Promo", "Fiolet", "Promo"},
		{"Czerwony", "Czerwony", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		name, rarity := ParseColorWithRarity(tt.in)
		assert.Equal(t, tt.wantName, name, "input %q", tt.in)
		assert.Equal(t, tt.wantRarity, rarity, "input %q", tt.in)
	}
}

func TestParseColorWithRarity_Idempotent(t *testing.T) {
	name, rarity := ParseColorWithRarity("Ocean - Limitowane")
	require.Equal(t, model.RarityLimited, rarity)

	again, rarity2 := ParseColorWithRarity(name)
	assert.Equal(t, name, again)
	assert.Empty(t, rarity2)
}

func TestDecomposeModel_AeroOnly(t *testing.T) {
	card, err := Parse("VUID 2\nModel Sultan Aero II\nSilnik R4 (2.0dm3)\n")
	require.NoError(t, err)
	assert.Equal(t, "Sultan", card.BaseModel)
	assert.Equal(t, "Aero II", card.BodykitAeroName)
	assert.Empty(t, card.BodykitMainName)
	assert.Zero(t, card.ModelID)
}

func TestDecomposeModel_MainKitWithAero(t *testing.T) {
	card, err := Parse("VUID 2\nModel Elegy RH5 aero iv (77)\nSilnik R6 (3.0dm3)\n")
	require.NoError(t, err)
	assert.Equal(t, "Elegy", card.BaseModel)
	assert.Equal(t, "Aero IV", card.BodykitAeroName)
	assert.Equal(t, "RH5", card.BodykitMainName)
	assert.Equal(t, 77, card.ModelID)
}
