package main

import "strings"

// ── Candidate Filter/Sort ──────────────────────────────────────────

// MaxPartyElements caps distinct non-All elements within one party.
const MaxPartyElements = 2

// CharacterFilter holds the selector's active criteria. Zero values mean
// "no filter".
type CharacterFilter struct {
	Search  string
	Element Element
	Role    Role
}

type EquipmentFilter struct {
	Search   string
	SubStats string
}

// ToggleElement implements single-select buttons: choosing the active
// element again turns the filter off.
func (f CharacterFilter) ToggleElement(e Element) CharacterFilter {
	if f.Element == e {
		f.Element = ""
	} else {
		f.Element = e
	}
	return f
}

func (f CharacterFilter) ToggleRole(r Role) CharacterFilter {
	if f.Role == r {
		f.Role = ""
	} else {
		f.Role = r
	}
	return f
}

func (f EquipmentFilter) ToggleSubStats(label string) EquipmentFilter {
	if f.SubStats == label {
		f.SubStats = ""
	} else {
		f.SubStats = label
	}
	return f
}

// Candidate is one row of the selector. Used items stay visible but are
// not selectable; the incumbent (Current) is always selectable and
// choosing it again means "remove".
type Candidate[T any] struct {
	Item       T
	Used       bool
	Current    bool
	Selectable bool
}

// ActiveElements returns the distinct non-All elements placed in the
// party's other slots, in slot order.
func ActiveElements(p Party, exceptSlot int) []Element {
	var out []Element
	for i, s := range p.Slots {
		if i == exceptSlot || s.Character == nil || s.Character.Element == ElementAll {
			continue
		}
		if !containsElement(out, s.Character.Element) {
			out = append(out, s.Character.Element)
		}
	}
	return out
}

func containsElement(list []Element, e Element) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}

func matchesSearch(search string, fields ...string) bool {
	q := foldKey(search)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if f != "" && strings.Contains(foldKey(f), q) {
			return true
		}
	}
	return false
}

// CharacterCandidates filters and orders the character catalog for one
// slot. selectedID is the character currently in that slot (0 for none).
func CharacterCandidates(cat *Catalog, used map[int]bool, f CharacterFilter, active []Element, selectedID int) []Candidate[Character] {
	capped := len(active) >= MaxPartyElements
	out := make([]Candidate[Character], 0, len(cat.Characters))
	for _, c := range cat.Characters {
		current := selectedID != 0 && c.ID == selectedID
		if !matchesSearch(f.Search, c.Name) {
			continue
		}
		if capped && !current && c.Element != ElementAll && !containsElement(active, c.Element) {
			continue
		}
		if f.Element != "" && c.Element != f.Element && c.Element != ElementAll {
			continue
		}
		if f.Role != "" && c.Role != f.Role {
			continue
		}
		isUsed := used[c.ID] && !current
		out = append(out, Candidate[Character]{Item: c, Used: isUsed, Current: current, Selectable: !isUsed})
	}
	return moveCurrentFirst(out)
}

// EquipmentCandidates filters and orders the equipment catalog for one
// sub-slot. selectedID is the item currently in that sub-slot (0 for none).
func EquipmentCandidates(cat *Catalog, used map[int]bool, f EquipmentFilter, selectedID int) []Candidate[Equipment] {
	out := make([]Candidate[Equipment], 0, len(cat.Equipment))
	for _, e := range cat.Equipment {
		if !matchesSearch(f.Search, e.Name, e.Stats) {
			continue
		}
		if f.SubStats != "" && e.SubStats != f.SubStats {
			continue
		}
		current := selectedID != 0 && e.ID == selectedID
		isUsed := used[e.ID] && !current
		out = append(out, Candidate[Equipment]{Item: e, Used: isUsed, Current: current, Selectable: !isUsed})
	}
	return moveCurrentFirst(out)
}

// moveCurrentFirst is a stable move-to-front of the incumbent.
func moveCurrentFirst[T any](list []Candidate[T]) []Candidate[T] {
	for i, c := range list {
		if !c.Current {
			continue
		}
		if i == 0 {
			return list
		}
		copy(list[1:i+1], list[:i])
		list[0] = c
		return list
	}
	return list
}
