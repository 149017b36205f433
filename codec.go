package main

import "strings"

// ── Text Codec ─────────────────────────────────────────────────────
//
// Line format matches the game's own "share composition" text:
//
//	Ramona、Bleeding Crown、-、
//	-
//
// one line per slot, trailing delimiter after the last field.

const (
	CodecDelimiter   = "、"
	CodecPlaceholder = "-"
)

// ExportParty renders the party's four slots as text.
func ExportParty(p Party) string {
	lines := make([]string, 0, SlotsPerParty)
	for _, s := range p.Slots {
		if s.Character == nil {
			lines = append(lines, CodecPlaceholder)
			continue
		}
		fields := []string{s.Character.Name}
		for _, e := range s.Equipments {
			if e == nil {
				fields = append(fields, CodecPlaceholder)
			} else {
				fields = append(fields, e.Name)
			}
		}
		lines = append(lines, strings.Join(fields, CodecDelimiter)+CodecDelimiter)
	}
	return strings.Join(lines, "\n")
}

// ImportLines parses at most four slot lines. A bare "-" line is an empty
// slot, so exported parties with gaps keep their positions; other lines
// without the delimiter are skipped. An unknown character name yields an
// empty slot; unknown equipment yields an empty sub-slot.
func ImportLines(lines []string, cat *Catalog) []Slot {
	var out []Slot
	for _, line := range lines {
		if len(out) == SlotsPerParty {
			break
		}
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == CodecPlaceholder {
			out = append(out, Slot{})
			continue
		}
		if line == "" || !strings.Contains(line, CodecDelimiter) {
			continue
		}
		fields := strings.Split(line, CodecDelimiter)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		var slot Slot
		if c := cat.CharacterByName(fields[0]); c != nil {
			slot.Character = c
			for ei := 0; ei < EquipPerSlot; ei++ {
				fi := ei + 1
				if fi >= len(fields) || fields[fi] == "" || fields[fi] == CodecPlaceholder {
					continue
				}
				slot.Equipments[ei] = cat.EquipmentByName(fields[fi])
			}
		}
		out = append(out, slot)
	}
	return out
}

// MergeImport overlays imported slots onto base from position 0; slots
// beyond the imported count keep their current contents.
func MergeImport(base [SlotsPerParty]Slot, imported []Slot) [SlotsPerParty]Slot {
	for i := 0; i < len(imported) && i < SlotsPerParty; i++ {
		base[i] = imported[i]
	}
	return base
}

// SplitLines splits pasted text on any newline convention.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
