package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ── Recommended Decks ──────────────────────────────────────────────

var (
	ErrDeckNameRequired = errors.New("deck name is required")
	ErrDeckTooManySlots = errors.New("deck has more than 4 slots")
	// ErrDeckStoreUnavailable is the generic failure shown to users when a
	// remote call fails; the cause goes to the log.
	ErrDeckStoreUnavailable = errors.New("deck store unavailable, try again later")
)

// Deck is a party composition shared through the deck store, keyed by ids.
type Deck struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Author      string     `json:"author"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	Slots       []DeckSlot `json:"slots"`
}

type DeckSlot struct {
	CharID   int                `json:"charId"`
	EquipIDs [EquipPerSlot]*int `json:"equipIds"`
}

// DeckStore is the port to the shared deck collection.
type DeckStore interface {
	AddDeck(ctx context.Context, d Deck) (Deck, error)
	// ListDecks returns every deck, newest first.
	ListDecks(ctx context.Context) ([]Deck, error)
}

type DeckMeta struct {
	Name        string
	Author      string
	Description string
}

func intPtr(v int) *int { return &v }

// DeckFromParty captures the party's ids. Empty slots become CharID 0.
func DeckFromParty(p Party, meta DeckMeta, now time.Time) Deck {
	d := Deck{
		Name:        strings.TrimSpace(meta.Name),
		Author:      strings.TrimSpace(meta.Author),
		Description: strings.TrimSpace(meta.Description),
		CreatedAt:   now.UTC(),
		Slots:       make([]DeckSlot, 0, SlotsPerParty),
	}
	for _, s := range p.Slots {
		var ds DeckSlot
		if s.Character != nil {
			ds.CharID = s.Character.ID
		}
		for i, e := range s.Equipments {
			if e != nil {
				ds.EquipIDs[i] = intPtr(e.ID)
			}
		}
		d.Slots = append(d.Slots, ds)
	}
	return d
}

// SlotsFromDeck resolves ids against the catalog. A missing character empties
// the whole slot; a missing equipment id empties only its sub-slot.
func SlotsFromDeck(d Deck, cat *Catalog) [SlotsPerParty]Slot {
	var slots [SlotsPerParty]Slot
	for i, ds := range d.Slots {
		if i >= SlotsPerParty {
			break
		}
		c := cat.CharacterByID(ds.CharID)
		if c == nil {
			continue
		}
		slots[i].Character = c
		for ei, id := range ds.EquipIDs {
			if id != nil {
				slots[i].Equipments[ei] = cat.EquipmentByID(*id)
			}
		}
	}
	return slots
}

// Validate checks a deck before it is written; author falls back to
// defaultAuthor.
func (d *Deck) Validate(defaultAuthor string) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Author = strings.TrimSpace(d.Author)
	if d.Name == "" {
		return ErrDeckNameRequired
	}
	if d.Author == "" {
		d.Author = defaultAuthor
	}
	if len(d.Slots) > SlotsPerParty {
		return fmt.Errorf("%w: %d", ErrDeckTooManySlots, len(d.Slots))
	}
	return nil
}

// CharacterNames lists the deck's characters for display, "-" for gaps.
func (d Deck) CharacterNames(cat *Catalog) []string {
	names := make([]string, 0, len(d.Slots))
	for _, ds := range d.Slots {
		if c := cat.CharacterByID(ds.CharID); c != nil {
			names = append(names, c.Name)
		} else {
			names = append(names, CodecPlaceholder)
		}
	}
	return names
}

// ── Deck Service ───────────────────────────────────────────────────

// DeckService wraps a DeckStore with validation and the user-facing
// failure policy: causes are logged, callers see ErrDeckStoreUnavailable.
type DeckService struct {
	store         DeckStore
	defaultAuthor string
	log           *zap.Logger
	now           func() time.Time
}

func NewDeckService(store DeckStore, defaultAuthor string, log *zap.Logger) *DeckService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeckService{store: store, defaultAuthor: defaultAuthor, log: log, now: time.Now}
}

// Share publishes the party as a recommended deck.
func (s *DeckService) Share(ctx context.Context, p Party, meta DeckMeta) (Deck, error) {
	d := DeckFromParty(p, meta, s.now())
	if err := d.Validate(s.defaultAuthor); err != nil {
		return Deck{}, err
	}
	saved, err := s.store.AddDeck(ctx, d)
	if err != nil {
		s.log.Error("share deck", zap.Int("party", p.ID), zap.String("name", d.Name), zap.Error(err))
		return Deck{}, ErrDeckStoreUnavailable
	}
	s.log.Info("deck shared", zap.String("id", saved.ID), zap.Int("party", p.ID))
	return saved, nil
}

func (s *DeckService) List(ctx context.Context) ([]Deck, error) {
	decks, err := s.store.ListDecks(ctx)
	if err != nil {
		s.log.Error("list decks", zap.Error(err))
		return nil, ErrDeckStoreUnavailable
	}
	return decks, nil
}

// IsUserError reports whether err should be shown verbatim rather than
// replaced by a generic message.
func IsUserError(err error) bool {
	return errors.Is(err, ErrDeckNameRequired) || errors.Is(err, ErrDeckTooManySlots) ||
		errors.Is(err, ErrDeckStoreUnavailable)
}
