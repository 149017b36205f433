package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ── Argument Helpers ───────────────────────────────────────────────

func parsePartyArg(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid party id %q", s)
	}
	return id, nil
}

// parseIndexArg turns a 1-based CLI position into a 0-based index.
func parseIndexArg(what, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return n - 1, nil
}

// userError rewrites store errors into the text shown to the user.
func (a *app) userError(err error) error {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return errors.New(conflict.Conflict.Describe(a.cat))
	}
	return err
}

func (a *app) party(arg string) (Party, error) {
	id, err := parsePartyArg(arg)
	if err != nil {
		return Party{}, err
	}
	p, ok := a.store.Party(id)
	if !ok {
		return Party{}, fmt.Errorf("%w: %d", ErrPartyNotFound, id)
	}
	return p, nil
}

func printParty(w io.Writer, p Party) {
	fmt.Fprintf(w, "[%d] %s\n", p.ID, p.Name)
	for i, s := range p.Slots {
		char := CodecPlaceholder
		if s.Character != nil {
			char = fmt.Sprintf("%s (%s, %s)", s.Character.Name, s.Character.Element, s.Character.Role)
		}
		equips := make([]string, EquipPerSlot)
		for ei, e := range s.Equipments {
			equips[ei] = CodecPlaceholder
			if e != nil {
				equips[ei] = e.Name
			}
		}
		fmt.Fprintf(w, "  %d. %s | %s\n", i+1, char, strings.Join(equips, " | "))
	}
}

// ── Party Commands ─────────────────────────────────────────────────

func (a *app) partiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parties",
		Short: "List all parties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, p := range a.store.Snapshot().Parties {
				var names []string
				for _, s := range p.Slots {
					if s.Character != nil {
						names = append(names, s.Character.Name)
					}
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", p.ID, p.Name, strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [party]",
		Short: "Show one party's slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.party(args[0])
			if err != nil {
				return err
			}
			printParty(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func (a *app) placeCharCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place-char [party] [slot] [character]",
		Short: "Place a character into a slot (1-4)",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			partyID, err := parsePartyArg(args[0])
			if err != nil {
				return err
			}
			slot, err := parseIndexArg("slot", args[1])
			if err != nil {
				return err
			}
			name := strings.Join(args[2:], " ")
			c := a.cat.CharacterByName(name)
			if c == nil {
				return fmt.Errorf("unknown character %q", name)
			}
			if err := a.store.PlaceCharacter(partyID, slot, c); err != nil {
				return a.userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Placed %s\n", c.Name)
			return nil
		},
	}
}

func (a *app) placeEquipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place-equip [party] [slot] [1|2] [equipment]",
		Short: "Equip an item on a slot's character",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			partyID, err := parsePartyArg(args[0])
			if err != nil {
				return err
			}
			slot, err := parseIndexArg("slot", args[1])
			if err != nil {
				return err
			}
			equip, err := parseIndexArg("equipment position", args[2])
			if err != nil {
				return err
			}
			name := strings.Join(args[3:], " ")
			e := a.cat.EquipmentByName(name)
			if e == nil {
				return fmt.Errorf("unknown equipment %q", name)
			}
			if err := a.store.PlaceEquipment(partyID, slot, equip, e); err != nil {
				return a.userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Equipped %s\n", e.Name)
			return nil
		},
	}
}

func (a *app) clearCharCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-char [party] [slot]",
		Short: "Remove a slot's character and its equipment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			partyID, err := parsePartyArg(args[0])
			if err != nil {
				return err
			}
			slot, err := parseIndexArg("slot", args[1])
			if err != nil {
				return err
			}
			return a.store.PlaceCharacter(partyID, slot, nil)
		},
	}
}

func (a *app) clearEquipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-equip [party] [slot] [1|2]",
		Short: "Unequip one equipment position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			partyID, err := parsePartyArg(args[0])
			if err != nil {
				return err
			}
			slot, err := parseIndexArg("slot", args[1])
			if err != nil {
				return err
			}
			equip, err := parseIndexArg("equipment position", args[2])
			if err != nil {
				return err
			}
			return a.store.PlaceEquipment(partyID, slot, equip, nil)
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [party] [name]",
		Short: "Rename a party (blank names are ignored)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			partyID, err := parsePartyArg(args[0])
			if err != nil {
				return err
			}
			return a.store.RenameParty(partyID, strings.Join(args[1:], " "))
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset [party]",
		Short: "Clear every slot of a party",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partyID, err := parsePartyArg(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return errors.New("reset clears every slot; pass --yes to confirm")
			}
			return a.store.ResetParty(partyID)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")
	return cmd
}

// ── Text Codec Commands ────────────────────────────────────────────

func (a *app) exportCmd() *cobra.Command {
	var copyText bool
	cmd := &cobra.Command{
		Use:   "export [party]",
		Short: "Print a party as composition text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.party(args[0])
			if err != nil {
				return err
			}
			text := ExportParty(p)
			fmt.Fprintln(cmd.OutOrStdout(), text)
			if copyText {
				if err := clipboard.WriteAll(text); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyText, "copy", false, "Also copy the text to the clipboard")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [party] [file]",
		Short: "Merge composition text into a party (reads stdin without a file)",
		Long: `Reads one line per slot: character、equipment、equipment.

Lines fill slots from the first; slots without a line keep their
current contents. Import does not check uniqueness.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.party(args[0])
			if err != nil {
				return err
			}
			var data []byte
			if len(args) == 2 {
				data, err = os.ReadFile(args[1])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			imported := ImportLines(SplitLines(string(data)), a.cat)
			if len(imported) == 0 {
				return errors.New("no composition lines found")
			}
			if err := a.store.OverwriteParty(p.ID, MergeImport(p.Slots, imported), nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d slot(s) into %s\n", len(imported), p.Name)
			return nil
		},
	}
}

// ── Candidates ─────────────────────────────────────────────────────

func (a *app) candidatesCmd() *cobra.Command {
	var (
		equip   int
		search  string
		element string
		role    string
		subStat string
	)
	cmd := &cobra.Command{
		Use:   "candidates [party] [slot]",
		Short: "List what may be placed into a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.party(args[0])
			if err != nil {
				return err
			}
			slot, err := parseIndexArg("slot", args[1])
			if err != nil {
				return err
			}
			if slot < 0 || slot >= SlotsPerParty {
				return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot+1)
			}
			snap := a.store.Snapshot()
			out := cmd.OutOrStdout()
			mark := func(used, current bool) string {
				switch {
				case current:
					return "*"
				case used:
					return "x"
				}
				return " "
			}

			if equip == 0 {
				f := CharacterFilter{Search: search}
				if element != "" {
					if f.Element, err = ParseElement(element); err != nil {
						return err
					}
				}
				if role != "" {
					if f.Role, err = ParseRole(role); err != nil {
						return err
					}
				}
				selectedID := 0
				if c := p.Slots[slot].Character; c != nil {
					selectedID = c.ID
				}
				for _, c := range CharacterCandidates(a.cat, snap.UsedCharacterIDs(), f, ActiveElements(p, slot), selectedID) {
					fmt.Fprintf(out, "%s %-20s %-8s %s\n", mark(c.Used, c.Current), c.Item.Name, c.Item.Element, c.Item.Role)
				}
				return nil
			}

			ei := equip - 1
			if ei < 0 || ei >= EquipPerSlot {
				return fmt.Errorf("%w: %d", ErrEquipOutOfRange, equip)
			}
			selectedID := 0
			if e := p.Slots[slot].Equipments[ei]; e != nil {
				selectedID = e.ID
			}
			f := EquipmentFilter{Search: search, SubStats: subStat}
			for _, c := range EquipmentCandidates(a.cat, snap.UsedEquipmentIDs(), f, selectedID) {
				fmt.Fprintf(out, "%s %-20s %s\n", mark(c.Used, c.Current), c.Item.Name, c.Item.SubStats)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&equip, "equip", 0, "List equipment for position 1 or 2 instead of characters")
	cmd.Flags().StringVar(&search, "search", "", "Name search (equipment also matches stats text)")
	cmd.Flags().StringVar(&element, "element", "", "Element filter")
	cmd.Flags().StringVar(&role, "role", "", "Role filter")
	cmd.Flags().StringVar(&subStat, "sub-stat", "", "Equipment sub-stat filter")
	return cmd
}

// ── Capture ────────────────────────────────────────────────────────

func (a *app) captureCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "capture [party]",
		Short: "Save a party as a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.party(args[0])
			if err != nil {
				return err
			}
			opts, err := CaptureOptionsFromConfig(a.cfg.Capture)
			if err != nil {
				return err
			}
			img, err := CaptureParty(p, opts)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(a.cfg.Capture.Dir, captureFileName(p, time.Now()))
			}
			if err := WriteCapturePNG(out, img); err != nil {
				return err
			}
			a.log.Info("party captured", zap.Int("party", p.ID), zap.String("path", out))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: <home>/captures/party-<id>-<time>.png)")
	return cmd
}

// ── Deck Commands ──────────────────────────────────────────────────

func (a *app) deckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Share and browse recommended decks",
	}
	cmd.AddCommand(a.deckListCmd(), a.deckShareCmd(), a.deckApplyCmd())
	return cmd
}

func (a *app) deckListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recommended decks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDecks, err := a.deckService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDecks()
			decks, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range decks {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Author, strings.Join(d.CharacterNames(a.cat), ", "))
			}
			return nil
		},
	}
}

func (a *app) deckShareCmd() *cobra.Command {
	var meta DeckMeta
	cmd := &cobra.Command{
		Use:   "share [party]",
		Short: "Publish a party as a recommended deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.party(args[0])
			if err != nil {
				return err
			}
			if meta.Name == "" {
				meta.Name = p.Name
			}
			svc, closeDecks, err := a.deckService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDecks()
			d, err := svc.Share(cmd.Context(), p, meta)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shared %s (%s)\n", d.Name, d.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&meta.Name, "name", "", "Deck name (default: party name)")
	cmd.Flags().StringVar(&meta.Author, "author", "", "Author (default: config author)")
	cmd.Flags().StringVar(&meta.Description, "description", "", "Description")
	return cmd
}

func (a *app) deckApplyCmd() *cobra.Command {
	var (
		rename bool
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "apply [deck-id] [party]",
		Short: "Replace a party's slots with a recommended deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.party(args[1])
			if err != nil {
				return err
			}
			if !yes {
				return errors.New("apply replaces every slot; pass --yes to confirm")
			}
			svc, closeDecks, err := a.deckService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDecks()
			decks, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range decks {
				if d.ID != args[0] {
					continue
				}
				var name *string
				if rename {
					name = &d.Name
				}
				if err := a.store.OverwriteParty(p.ID, SlotsFromDeck(d, a.cat), name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %s to %s\n", d.Name, p.Name)
				return nil
			}
			return fmt.Errorf("deck %q not found", args[0])
		},
	}
	cmd.Flags().BoolVar(&rename, "rename", false, "Also rename the party to the deck name")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the replacement")
	return cmd
}

// ── Serve ──────────────────────────────────────────────────────────

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the SQLite deck store over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := OpenSQLiteDeckStore(ctx, a.cfg.DeckStore.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           NewDeckRouter(store, a.cfg.DeckStore.Token, a.cfg.Author, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("deck server listening", zap.String("addr", addr), zap.String("db", a.cfg.DeckStore.Path))
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Serving decks on %s\n", addr)

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.log.Info("deck server stopping")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")
	return cmd
}
