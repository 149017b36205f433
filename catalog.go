package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

//go:embed data/*.json
var defaultCatalogFS embed.FS

// ── Reference Types ────────────────────────────────────────────────

type Element string

const (
	ElementChaos  Element = "Chaos"
	ElementAequor Element = "Aequor"
	ElementCaro   Element = "Caro"
	ElementUltra  Element = "Ultra"
	// ElementAll satisfies any element constraint and never counts
	// toward the per-party element cap.
	ElementAll Element = "All"
)

// Elements lists the filterable elements in button order.
var Elements = []Element{ElementChaos, ElementAequor, ElementCaro, ElementUltra}

type Role string

const (
	RoleStriker    Role = "Striker"
	RoleGuardian   Role = "Guardian"
	RoleSupport    Role = "Support"
	RoleController Role = "Controller"
)

var Roles = []Role{RoleStriker, RoleGuardian, RoleSupport, RoleController}

// Character is immutable reference data.
type Character struct {
	ID      int
	Name    string
	Element Element
	Role    Role
	Img     string
}

// Equipment is immutable reference data. SubStats, Stats and Keyword are
// empty when the source record omits them.
type Equipment struct {
	ID       int
	Name     string
	Img      string
	SubStats string
	Stats    string
	Keyword  string
}

// Catalog holds both reference lists in source order plus lookup indexes.
type Catalog struct {
	Characters []Character
	Equipment  []Equipment

	charByID    map[int]*Character
	charByName  map[string]*Character
	equipByID   map[int]*Equipment
	equipByName map[string]*Equipment
}

// ── Raw Records ────────────────────────────────────────────────────

type characterRecord struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Element string `json:"element"`
	Role    string `json:"role"`
	Img     string `json:"img"`
}

type equipmentRecord struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Img      string  `json:"img"`
	SubStats *string `json:"sub_stats"`
	Stats    *string `json:"stats"`
	Keyword  *string `json:"keyword"`
}

// ── Normalization ──────────────────────────────────────────────────

// foldKey trims, NFC-normalizes and case-folds s for comparisons.
func foldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// cleanName trims and NFC-normalizes a display string without folding.
func cleanName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func ParseElement(s string) (Element, error) {
	key := foldKey(s)
	for _, e := range append([]Element{ElementAll}, Elements...) {
		if foldKey(string(e)) == key {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown element %q", s)
}

func ParseRole(s string) (Role, error) {
	key := foldKey(s)
	for _, r := range Roles {
		if foldKey(string(r)) == key {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// ── Loading ────────────────────────────────────────────────────────

// LoadCatalog reads characters.json and equipment.json from dir. An empty
// dir loads the embedded default data set.
func LoadCatalog(dir string) (*Catalog, error) {
	var fsys fs.FS
	if strings.TrimSpace(dir) == "" {
		sub, err := fs.Sub(defaultCatalogFS, "data")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	var chars []characterRecord
	if err := readCatalogJSON(fsys, "characters.json", &chars); err != nil {
		return nil, err
	}
	var equips []equipmentRecord
	if err := readCatalogJSON(fsys, "equipment.json", &equips); err != nil {
		return nil, err
	}
	return NewCatalog(chars, equips)
}

func readCatalogJSON(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(name), err)
	}
	return nil
}

// NewCatalog normalizes raw records and builds the lookup indexes.
// Duplicate ids or names within a list are rejected.
func NewCatalog(chars []characterRecord, equips []equipmentRecord) (*Catalog, error) {
	cat := &Catalog{
		Characters:  make([]Character, 0, len(chars)),
		Equipment:   make([]Equipment, 0, len(equips)),
		charByID:    make(map[int]*Character, len(chars)),
		charByName:  make(map[string]*Character, len(chars)),
		equipByID:   make(map[int]*Equipment, len(equips)),
		equipByName: make(map[string]*Equipment, len(equips)),
	}

	seenIDs := make(map[int]bool)
	seenNames := make(map[string]bool)
	for _, r := range chars {
		name := cleanName(r.Name)
		if r.ID <= 0 {
			return nil, fmt.Errorf("character %q: id must be positive", name)
		}
		if name == "" {
			return nil, fmt.Errorf("character %d: name is required", r.ID)
		}
		if seenIDs[r.ID] {
			return nil, fmt.Errorf("duplicate character id %d", r.ID)
		}
		if seenNames[name] {
			return nil, fmt.Errorf("duplicate character name %q", name)
		}
		el, err := ParseElement(r.Element)
		if err != nil {
			return nil, fmt.Errorf("character %q: %w", name, err)
		}
		role, err := ParseRole(r.Role)
		if err != nil {
			return nil, fmt.Errorf("character %q: %w", name, err)
		}
		seenIDs[r.ID] = true
		seenNames[name] = true
		cat.Characters = append(cat.Characters, Character{
			ID:      r.ID,
			Name:    name,
			Element: el,
			Role:    role,
			Img:     strings.TrimSpace(r.Img),
		})
	}

	seenIDs = make(map[int]bool)
	seenNames = make(map[string]bool)
	for _, r := range equips {
		name := cleanName(r.Name)
		if r.ID <= 0 {
			return nil, fmt.Errorf("equipment %q: id must be positive", name)
		}
		if name == "" {
			return nil, fmt.Errorf("equipment %d: name is required", r.ID)
		}
		if seenIDs[r.ID] {
			return nil, fmt.Errorf("duplicate equipment id %d", r.ID)
		}
		if seenNames[name] {
			return nil, fmt.Errorf("duplicate equipment name %q", name)
		}
		seenIDs[r.ID] = true
		seenNames[name] = true
		cat.Equipment = append(cat.Equipment, Equipment{
			ID:       r.ID,
			Name:     name,
			Img:      strings.TrimSpace(r.Img),
			SubStats: optional(r.SubStats),
			Stats:    optional(r.Stats),
			Keyword:  optional(r.Keyword),
		})
	}

	// Index after the slices stop growing so the pointers stay valid.
	for i := range cat.Characters {
		c := &cat.Characters[i]
		cat.charByID[c.ID] = c
		cat.charByName[c.Name] = c
	}
	for i := range cat.Equipment {
		e := &cat.Equipment[i]
		cat.equipByID[e.ID] = e
		cat.equipByName[e.Name] = e
	}
	return cat, nil
}

// ── Lookups ────────────────────────────────────────────────────────

func (c *Catalog) CharacterByID(id int) *Character { return c.charByID[id] }
func (c *Catalog) EquipmentByID(id int) *Equipment { return c.equipByID[id] }

func (c *Catalog) CharacterByName(name string) *Character {
	return c.charByName[cleanName(name)]
}

func (c *Catalog) EquipmentByName(name string) *Equipment {
	return c.equipByName[cleanName(name)]
}

// SubStatLabels returns the distinct non-empty sub-stat labels in catalog order.
func (c *Catalog) SubStatLabels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, e := range c.Equipment {
		if e.SubStats == "" || seen[e.SubStats] {
			continue
		}
		seen[e.SubStats] = true
		labels = append(labels, e.SubStats)
	}
	return labels
}
