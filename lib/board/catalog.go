package board

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"regexp"
	"slices"
	"sync"

	"github.com/go-i2p/boardcfg/lib/constraint"
	"github.com/go-i2p/boardcfg/lib/option"
	"github.com/go-i2p/boardcfg/lib/resolver"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

var log = logger.GetGoI2PLogger()

const (
	// DefaultBaseline is the baseline a board includes when it names none.
	DefaultBaseline = "common.yaml"
	// ConstraintsFile holds the dependency rules shared by all boards.
	ConstraintsFile = "constraints.yaml"
	// BoardsDir contains one directory per board.
	BoardsDir = "boards"
	// BoardFile is the override layer inside a board directory.
	BoardFile = "board.yaml"

	// NameOption and MCUOption receive the board's name and mcu fields.
	NameOption = "board.name"
	MCUOption  = "board.mcu"
)

var ErrUnknownBoard = errors.New("unknown board")

var boardIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Board is one hardware variant: its override layer and the baseline it includes.
type Board struct {
	ID       string
	Name     string
	MCU      string
	Baseline string
	Override option.Layer
}

// Catalog is a loaded set of boards sharing baselines and constraints.
// It is read-only after Open and safe for concurrent use.
type Catalog struct {
	baselines   map[string]option.Layer
	symbols     map[string]map[string]string
	constraints constraint.Set
	boards      map[string]*Board
}

// Open loads every board, the baselines they include and the constraint file
// from fsys. Each baseline file is read once, however many boards include it.
func Open(fsys fs.FS) (*Catalog, error) {
	log.WithFields(logger.Fields{
		"at":     "board.Open",
		"reason": "loading_catalog",
	}).Debug("opening board catalog")

	c := &Catalog{
		baselines: make(map[string]option.Layer),
		symbols:   make(map[string]map[string]string),
		boards:    make(map[string]*Board),
	}

	set, err := loadConstraints(fsys, ConstraintsFile)
	if err != nil {
		return nil, err
	}
	c.constraints = set

	entries, err := fs.ReadDir(fsys, BoardsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.In("board").With("dir", BoardsDir).Wrapf(err, "list boards")
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		b, err := loadBoard(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		if err := c.ensureBaseline(fsys, b.Baseline); err != nil {
			return nil, err
		}
		c.boards[b.ID] = b
	}

	// The default baseline is required even in a catalog without boards.
	if err := c.ensureBaseline(fsys, DefaultBaseline); err != nil {
		return nil, err
	}

	log.WithFields(logger.Fields{
		"at":          "board.Open",
		"reason":      "catalog_loaded",
		"boards":      len(c.boards),
		"baselines":   len(c.baselines),
		"constraints": len(c.constraints),
	}).Debug("board catalog loaded")
	return c, nil
}

func (c *Catalog) ensureBaseline(fsys fs.FS, file string) error {
	if _, ok := c.baselines[file]; ok {
		return nil
	}
	layer, symbols, err := loadBaseline(fsys, file)
	if errors.Is(err, fs.ErrNotExist) {
		return &resolver.Error{Kind: resolver.ErrEmptyBaseline, Detail: "baseline layer " + file + " is missing", Err: err}
	}
	if err != nil {
		return err
	}
	c.baselines[file] = layer
	c.symbols[file] = symbols
	return nil
}

func loadBoard(fsys fs.FS, id string) (*Board, error) {
	if !boardIDPattern.MatchString(id) {
		return nil, oops.In("board").With("board", id).Errorf("invalid board id %q", id)
	}
	file := path.Join(BoardsDir, id, BoardFile)

	var doc boardDoc
	if err := readFile(fsys, file, &doc); err != nil {
		return nil, err
	}
	values, err := decodeOptions(&doc.Options)
	if err != nil {
		return nil, oops.In("board").With("file", file).Wrapf(err, "options of %s", file)
	}

	for opt, field := range map[string]string{NameOption: doc.Name, MCUOption: doc.MCU} {
		if field == "" {
			continue
		}
		if _, dup := values[opt]; dup {
			return nil, oops.In("board").With("file", file).Wrapf(
				fmt.Errorf("%w: %s set both as field and option", ErrDuplicateOption, opt), "board %s", id)
		}
		values[opt] = option.String(field)
	}

	baseline := doc.Baseline
	if baseline == "" {
		baseline = DefaultBaseline
	}
	if !fs.ValidPath(baseline) {
		return nil, oops.In("board").With("file", file).Errorf("invalid baseline path %q", baseline)
	}

	layer, err := option.NewLayer(file, option.SourceOverride, values)
	if err != nil {
		return nil, oops.In("board").With("file", file).Wrapf(err, "board %s", id)
	}
	return &Board{ID: id, Name: doc.Name, MCU: doc.MCU, Baseline: baseline, Override: layer}, nil
}

// Boards returns the board ids in sorted order.
func (c *Catalog) Boards() []string {
	return slices.Sorted(maps.Keys(c.boards))
}

// Board returns the board with the given id.
func (c *Catalog) Board(id string) (*Board, error) {
	b, ok := c.boards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBoard, id)
	}
	return b, nil
}

// Baseline returns a baseline layer by file name.
func (c *Catalog) Baseline(file string) (option.Layer, bool) {
	l, ok := c.baselines[file]
	return l, ok
}

// Constraints returns the shared dependency rules.
func (c *Catalog) Constraints() constraint.Set {
	return slices.Clone(c.constraints)
}

// Symbols returns the symbol table of the baseline board id includes.
func (c *Catalog) Symbols(id string) (map[string]string, error) {
	b, err := c.Board(id)
	if err != nil {
		return nil, err
	}
	return maps.Clone(c.symbols[b.Baseline]), nil
}

// Resolve merges the board's override layer over its baseline.
func (c *Catalog) Resolve(id string, opts ...resolver.Option) (*resolver.Resolved, error) {
	b, err := c.Board(id)
	if err != nil {
		return nil, err
	}
	r, err := resolver.Resolve(b.Override, c.baselines[b.Baseline], c.constraints, opts...)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", id, err)
	}
	return r, nil
}

// ResolveAll resolves every board concurrently. All boards share their
// baseline layers read-only. The returned error joins the failures of
// every board that did not resolve; successful results are returned
// alongside it.
func (c *Catalog) ResolveAll(ctx context.Context, opts ...resolver.Option) (map[string]*resolver.Resolved, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]*resolver.Resolved, len(c.boards))
		errs    []error
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range c.Boards() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := c.Resolve(id, opts...)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			results[id] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, errors.Join(errs...)
}
