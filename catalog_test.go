package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestLoadCatalogEmbedded(t *testing.T) {
	cat := testCatalog(t)

	assert.Len(t, cat.Characters, 12)
	assert.Len(t, cat.Equipment, 10)

	// Source order is kept.
	assert.Equal(t, "Ramona", cat.Characters[0].Name)
	assert.Equal(t, "Bleeding Crown", cat.Equipment[0].Name)
}

func TestCatalogNormalizesElementsAndRoles(t *testing.T) {
	cat := testCatalog(t)

	assert.Equal(t, ElementChaos, cat.CharacterByID(2).Element)
	assert.Equal(t, ElementAequor, cat.CharacterByID(4).Element)
	assert.Equal(t, ElementAll, cat.CharacterByID(10).Element)
	assert.Equal(t, RoleSupport, cat.CharacterByID(10).Role)
}

func TestCatalogOptionalEquipmentFields(t *testing.T) {
	cat := testCatalog(t)

	compass := cat.EquipmentByID(8)
	require.NotNil(t, compass)
	assert.Empty(t, compass.SubStats)
	assert.Empty(t, compass.Keyword)
	assert.Equal(t, "Speed +8", compass.Stats)
}

func TestCatalogLookups(t *testing.T) {
	cat := testCatalog(t)

	assert.Equal(t, 5, cat.CharacterByName("  Helot ").ID)
	assert.Nil(t, cat.CharacterByName("Nobody"))
	assert.Nil(t, cat.CharacterByID(99))
	assert.Equal(t, 3, cat.EquipmentByName("Tidal Mirror").ID)
	assert.Nil(t, cat.EquipmentByID(0))
}

func TestSubStatLabels(t *testing.T) {
	cat := testCatalog(t)
	assert.Equal(t, []string{"ATK", "DEF", "HP", "Energy"}, cat.SubStatLabels())
}

func TestNewCatalogRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name   string
		chars  []characterRecord
		equips []equipmentRecord
		errMsg string
	}{
		{
			name:   "duplicate character id",
			chars:  []characterRecord{{ID: 1, Name: "A", Element: "Chaos", Role: "Striker"}, {ID: 1, Name: "B", Element: "Caro", Role: "Striker"}},
			errMsg: "duplicate character id 1",
		},
		{
			name:   "duplicate character name",
			chars:  []characterRecord{{ID: 1, Name: "A", Element: "Chaos", Role: "Striker"}, {ID: 2, Name: " A", Element: "Caro", Role: "Striker"}},
			errMsg: `duplicate character name "A"`,
		},
		{
			name:   "unknown element",
			chars:  []characterRecord{{ID: 1, Name: "A", Element: "Fire", Role: "Striker"}},
			errMsg: `unknown element "Fire"`,
		},
		{
			name:   "unknown role",
			chars:  []characterRecord{{ID: 1, Name: "A", Element: "Chaos", Role: "Healer"}},
			errMsg: `unknown role "Healer"`,
		},
		{
			name:   "non-positive id",
			chars:  []characterRecord{{ID: 0, Name: "A", Element: "Chaos", Role: "Striker"}},
			errMsg: "id must be positive",
		},
		{
			name:   "missing equipment name",
			equips: []equipmentRecord{{ID: 4, Name: "  "}},
			errMsg: "equipment 4: name is required",
		},
		{
			name:   "duplicate equipment id",
			equips: []equipmentRecord{{ID: 4, Name: "X"}, {ID: 4, Name: "Y", SubStats: strPtr("ATK")}},
			errMsg: "duplicate equipment id 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.chars, tt.equips)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadCatalogFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "characters.json"),
		[]byte(`[{"id": 7, "name": "Solo", "element": "ultra", "role": "GUARDIAN"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "equipment.json"),
		[]byte(`[{"id": 3, "name": "Lone Ring", "sub_stats": null}]`), 0644))

	cat, err := LoadCatalog(dir)
	require.NoError(t, err)
	require.Len(t, cat.Characters, 1)
	assert.Equal(t, Character{ID: 7, Name: "Solo", Element: ElementUltra, Role: RoleGuardian}, cat.Characters[0])
	assert.Empty(t, cat.EquipmentByID(3).SubStats)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read characters.json")
}
