package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateNames[T any](list []Candidate[T], name func(T) string) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, name(c.Item))
	}
	return out
}

func charName(c Character) string { return c.Name }
func equipName(e Equipment) string { return e.Name }

func TestActiveElementsIgnoresAllAndExcludedSlot(t *testing.T) {
	cat := testCatalog(t)
	var p Party
	p.Slots[0].Character = cat.CharacterByID(1) // Chaos
	p.Slots[1].Character = cat.CharacterByID(9) // All
	p.Slots[2].Character = cat.CharacterByID(2) // Chaos
	p.Slots[3].Character = cat.CharacterByID(3) // Aequor

	assert.Equal(t, []Element{ElementChaos, ElementAequor}, ActiveElements(p, -1))
	assert.Equal(t, []Element{ElementChaos}, ActiveElements(p, 3))
}

// With Chaos and Aequor present, Caro and Ultra are hidden; All stays.
func TestCharacterCandidatesElementCap(t *testing.T) {
	cat := testCatalog(t)
	active := []Element{ElementChaos, ElementAequor}

	got := CharacterCandidates(cat, nil, CharacterFilter{}, active, 0)

	assert.Equal(t, []string{"Ramona", "Lotan", "Doll", "Sorel", "Tawil", "Karen", "Agrippa", "Murphy"},
		candidateNames(got, charName))
}

func TestCharacterCandidatesBelowCapShowsAll(t *testing.T) {
	cat := testCatalog(t)
	got := CharacterCandidates(cat, nil, CharacterFilter{}, []Element{ElementCaro}, 0)
	assert.Len(t, got, len(cat.Characters))
}

func TestCharacterCandidatesCapKeepsIncumbent(t *testing.T) {
	cat := testCatalog(t)
	// Slot holds Helot (Caro) while the other slots already use two elements.
	got := CharacterCandidates(cat, map[int]bool{5: true}, CharacterFilter{}, []Element{ElementChaos, ElementAequor}, 5)

	require.NotEmpty(t, got)
	assert.Equal(t, "Helot", got[0].Item.Name)
	assert.True(t, got[0].Current)
	assert.True(t, got[0].Selectable)
	assert.False(t, got[0].Used)
	assert.NotContains(t, candidateNames(got, charName), "Faint")
}

func TestCharacterCandidatesFilters(t *testing.T) {
	cat := testCatalog(t)

	t.Run("element keeps All", func(t *testing.T) {
		got := CharacterCandidates(cat, nil, CharacterFilter{Element: ElementUltra}, nil, 0)
		assert.Equal(t, []string{"Nymphaea", "Celeste", "Tawil", "Karen"}, candidateNames(got, charName))
	})

	t.Run("role", func(t *testing.T) {
		got := CharacterCandidates(cat, nil, CharacterFilter{Role: RoleGuardian}, nil, 0)
		assert.Equal(t, []string{"Lotan", "Helot", "Murphy"}, candidateNames(got, charName))
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		got := CharacterCandidates(cat, nil, CharacterFilter{Search: "  RA"}, nil, 0)
		assert.Equal(t, []string{"Ramona"}, candidateNames(got, charName))
	})

	t.Run("combined", func(t *testing.T) {
		got := CharacterCandidates(cat, nil, CharacterFilter{Element: ElementChaos, Role: RoleController}, nil, 0)
		assert.Equal(t, []string{"Tawil", "Agrippa"}, candidateNames(got, charName))
	})
}

func TestCharacterCandidatesUsedStayVisible(t *testing.T) {
	cat := testCatalog(t)
	got := CharacterCandidates(cat, map[int]bool{2: true}, CharacterFilter{Search: "lotan"}, nil, 0)

	require.Len(t, got, 1)
	assert.True(t, got[0].Used)
	assert.False(t, got[0].Selectable)
}

func TestEquipmentCandidates(t *testing.T) {
	cat := testCatalog(t)

	t.Run("sub-stat exact match", func(t *testing.T) {
		got := EquipmentCandidates(cat, nil, EquipmentFilter{SubStats: "ATK"}, 0)
		assert.Equal(t, []string{"Bleeding Crown", "Ashen Quill", "Rust Halo"}, candidateNames(got, equipName))
	})

	t.Run("search matches stats text", func(t *testing.T) {
		got := EquipmentCandidates(cat, nil, EquipmentFilter{Search: "defense"}, 0)
		assert.Equal(t, []string{"Silent Bell", "Rust Halo"}, candidateNames(got, equipName))
	})

	t.Run("incumbent first, rest in catalog order", func(t *testing.T) {
		got := EquipmentCandidates(cat, map[int]bool{9: true, 2: true}, EquipmentFilter{}, 9)
		names := candidateNames(got, equipName)
		assert.Equal(t, "Star Ledger", names[0])
		assert.Equal(t, []string{"Bleeding Crown", "Silent Bell", "Tidal Mirror"}, names[1:4])
		assert.Equal(t, "Rust Halo", names[len(names)-1])
		assert.True(t, got[0].Current)
		assert.True(t, got[2].Used)
	})

	t.Run("items without sub-stats never match a sub-stat filter", func(t *testing.T) {
		got := EquipmentCandidates(cat, nil, EquipmentFilter{SubStats: "Speed"}, 0)
		assert.Empty(t, got)
	})
}

func TestFilterToggles(t *testing.T) {
	f := CharacterFilter{}.ToggleElement(ElementCaro)
	assert.Equal(t, ElementCaro, f.Element)
	f = f.ToggleElement(ElementUltra)
	assert.Equal(t, ElementUltra, f.Element)
	f = f.ToggleElement(ElementUltra)
	assert.Equal(t, Element(""), f.Element)

	f = f.ToggleRole(RoleSupport).ToggleRole(RoleSupport)
	assert.Equal(t, Role(""), f.Role)

	ef := EquipmentFilter{}.ToggleSubStats("HP")
	assert.Equal(t, "HP", ef.SubStats)
	assert.Empty(t, ef.ToggleSubStats("HP").SubStats)
}
