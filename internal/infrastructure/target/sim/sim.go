// Package sim is an in-memory stand-in for the application the engine
// drives. It backs the engine tests and the dry-run mode of the binary.
package sim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/sell"
	"automarket/internal/domain/value"
)

var (
	ErrNoAgent      = errors.New("no agent open")
	ErrNotOpen      = errors.New("surface not open")
	ErrOutOfRange   = errors.New("menu index out of range")
	ErrShortStack   = errors.New("stack smaller than quantity")
	ErrInjected     = errors.New("injected fault")
	errUnknownEntry = errors.New("menu entry has no effect")
)

// EntryKind is what a menu entry does when invoked.
type EntryKind uint8

const (
	EntryInert EntryKind = iota
	EntryOpenSellList
	EntryPutUpForSale
	EntryVendor
	EntryCompare
)

type MenuEntry struct {
	Text string
	Kind EntryKind
}

type Stack struct {
	ItemID   uint32
	Quantity int
}

// Submission is one accepted listing.
type Submission struct {
	Agent    int
	ItemID   uint32
	Location value.Location
	Price    int64
	Quantity int
	// ListingsBefore is the agent's listing count when the listing arrived.
	ListingsBefore int
}

type Target struct {
	mu sync.Mutex

	listings    []int
	stacks      map[value.Location]Stack
	competing   map[entity.ItemKey]int64
	agentMenu   []MenuEntry
	contextMenu []MenuEntry
	sellDialog  []MenuEntry
	prompts     bool
	latency     time.Duration

	open       map[sell.Surface]bool
	agent      int
	selected   value.Location
	vendoredIn bool

	unready map[sell.Surface]int
	broken  map[sell.Surface]bool
	faults  map[string]error

	onSubmit    func(Submission)
	submissions []Submission
	vendored    []Stack
	invoked     []string
	confirms    int
	calls       []string
}

type Option func(*Target)

// WithAgents sets one agent per value, starting at the given listing count.
func WithAgents(listings ...int) Option {
	return func(t *Target) { t.listings = slices.Clone(listings) }
}

func WithStack(location value.Location, itemID uint32, quantity int) Option {
	return func(t *Target) { t.stacks[location] = Stack{ItemID: itemID, Quantity: quantity} }
}

func WithCompetingPrice(itemID uint32, isHQ bool, price int64) Option {
	return func(t *Target) { t.competing[entity.ItemKey{ItemID: itemID, IsHQ: isHQ}] = price }
}

func WithAgentMenu(entries ...MenuEntry) Option {
	return func(t *Target) { t.agentMenu = entries }
}

func WithContextMenu(entries ...MenuEntry) Option {
	return func(t *Target) { t.contextMenu = entries }
}

// WithVendorPrompt makes every vendor action ask for confirmation.
func WithVendorPrompt() Option {
	return func(t *Target) { t.prompts = true }
}

// WithUnready makes surface report not ready for the next polls checks.
func WithUnready(surface sell.Surface, polls int) Option {
	return func(t *Target) { t.unready[surface] = polls }
}

// WithBroken makes surface never become ready.
func WithBroken(surface sell.Surface) Option {
	return func(t *Target) { t.broken[surface] = true }
}

// WithFault makes every call of method fail with err.
func WithFault(method string, err error) Option {
	return func(t *Target) { t.faults[method] = err }
}

func WithLatency(d time.Duration) Option {
	return func(t *Target) { t.latency = d }
}

// OnSubmit runs after every accepted listing, outside the lock.
func OnSubmit(fn func(Submission)) Option {
	return func(t *Target) { t.onSubmit = fn }
}

func New(opts ...Option) *Target {
	t := &Target{
		listings:  []int{0},
		stacks:    make(map[value.Location]Stack),
		competing: make(map[entity.ItemKey]int64),
		agentMenu: []MenuEntry{
			{Text: "View sale history", Kind: EntryInert},
			{Text: "Sell items in your inventory on the market", Kind: EntryOpenSellList},
			{Text: "Quit", Kind: EntryInert},
		},
		contextMenu: []MenuEntry{
			{Text: "Put Up for Sale", Kind: EntryPutUpForSale},
			{Text: "Have Retainer Sell Items", Kind: EntryVendor},
			{Text: "Discard", Kind: EntryInert},
		},
		sellDialog: []MenuEntry{
			{Text: "Compare Prices", Kind: EntryCompare},
		},
		open:    map[sell.Surface]bool{sell.SurfaceAgentList: true},
		agent:   -1,
		unready: make(map[sell.Surface]int),
		broken:  make(map[sell.Surface]bool),
		faults:  make(map[string]error),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// FromCatalog seeds a target with the stacks of items, using the market
// price of each item as the lowest competing price.
func FromCatalog(items []*entity.StockItem, agents int, opts ...Option) *Target {
	seed := []Option{WithAgents(make([]int, max(agents, 1))...)}

	for _, item := range items {
		seed = append(seed, WithStack(item.Location, item.ItemID, item.Quantity))
		if item.MarketPrice > 0 {
			seed = append(seed, WithCompetingPrice(item.ItemID, item.IsHQ, item.MarketPrice))
		}
	}

	return New(append(seed, opts...)...)
}

// enter serializes calls, applies latency and injected faults.
func (t *Target) enter(ctx context.Context, method string) (func(), error) {
	if t.latency > 0 {
		select {
		case <-time.After(t.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	t.mu.Lock()
	t.calls = append(t.calls, method)

	if err := t.faults[method]; err != nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	return t.mu.Unlock, nil
}

func (t *Target) OpenAgent(ctx context.Context, index int) (bool, error) {
	unlock, err := t.enter(ctx, "OpenAgent")
	if err != nil {
		return false, err
	}
	defer unlock()

	if index < 0 || index >= len(t.listings) || !t.open[sell.SurfaceAgentList] {
		return false, nil
	}

	t.agent = index
	t.vendoredIn = false
	t.open[sell.SurfaceAgentMenu] = true

	return true, nil
}

func (t *Target) CloseAgent(ctx context.Context) error {
	unlock, err := t.enter(ctx, "CloseAgent")
	if err != nil {
		return err
	}
	defer unlock()

	t.agent = -1
	t.vendoredIn = false
	t.open = map[sell.Surface]bool{sell.SurfaceAgentList: true}

	return nil
}

func (t *Target) SurfaceReady(ctx context.Context, surface sell.Surface) (bool, error) {
	unlock, err := t.enter(ctx, "SurfaceReady")
	if err != nil {
		return false, err
	}
	defer unlock()

	if t.broken[surface] {
		return false, nil
	}
	if t.unready[surface] > 0 {
		t.unready[surface]--
		return false, nil
	}

	return t.open[surface], nil
}

func (t *Target) CloseSurface(ctx context.Context, surface sell.Surface) (bool, error) {
	unlock, err := t.enter(ctx, "CloseSurface")
	if err != nil {
		return false, err
	}
	defer unlock()

	if !t.open[surface] {
		return false, nil
	}

	t.open[surface] = false

	if surface == sell.SurfaceAgentMenu && t.vendoredIn {
		t.open[sell.SurfaceConfirmDialog] = true
	}

	return true, nil
}

func (t *Target) OpenInteractionSurface(ctx context.Context, location value.Location) (bool, error) {
	unlock, err := t.enter(ctx, "OpenInteractionSurface")
	if err != nil {
		return false, err
	}
	defer unlock()

	if t.agent < 0 || !t.open[sell.SurfaceSellList] {
		return false, nil
	}
	if t.stacks[location].Quantity <= 0 {
		return false, nil
	}

	t.selected = location
	t.open[sell.SurfaceContextMenu] = true

	return true, nil
}

// menu returns the topmost menu and the surface it belongs to.
func (t *Target) menu() ([]MenuEntry, sell.Surface) {
	switch {
	case t.open[sell.SurfaceComparePrices]:
		return nil, sell.SurfaceComparePrices
	case t.open[sell.SurfaceSellDialog]:
		return t.sellDialog, sell.SurfaceSellDialog
	case t.open[sell.SurfaceContextMenu]:
		return t.contextMenu, sell.SurfaceContextMenu
	case t.open[sell.SurfaceAgentMenu] && !t.open[sell.SurfaceSellList]:
		return t.agentMenu, sell.SurfaceAgentMenu
	default:
		return nil, 0
	}
}

func (t *Target) FindActionByLabel(ctx context.Context, labels []string) (int, bool, error) {
	unlock, err := t.enter(ctx, "FindActionByLabel")
	if err != nil {
		return 0, false, err
	}
	defer unlock()

	entries, _ := t.menu()

	for i, entry := range entries {
		for _, label := range labels {
			if strings.Contains(strings.ToLower(entry.Text), strings.ToLower(label)) {
				return i, true, nil
			}
		}
	}

	return 0, false, nil
}

func (t *Target) InvokeAction(ctx context.Context, index int) error {
	unlock, err := t.enter(ctx, "InvokeAction")
	if err != nil {
		return err
	}
	defer unlock()

	entries, surface := t.menu()
	if index < 0 || index >= len(entries) {
		return ErrOutOfRange
	}

	entry := entries[index]
	t.invoked = append(t.invoked, entry.Text)

	switch entry.Kind {
	case EntryOpenSellList:
		t.open[sell.SurfaceSellList] = true
	case EntryPutUpForSale:
		t.open[surface] = false
		t.open[sell.SurfaceSellDialog] = true
	case EntryVendor:
		t.open[surface] = false
		t.vendored = append(t.vendored, t.stacks[t.selected])
		delete(t.stacks, t.selected)
		t.vendoredIn = true
		if t.prompts {
			t.open[sell.SurfaceConfirmDialog] = true
		}
	case EntryCompare:
		t.open[sell.SurfaceComparePrices] = true
	default:
		return errUnknownEntry
	}

	return nil
}

func (t *Target) SubmitPriceAndQuantity(ctx context.Context, price int64, quantity int) error {
	unlock, err := t.enter(ctx, "SubmitPriceAndQuantity")
	if err != nil {
		return err
	}

	submission, err := t.submit(price, quantity)
	unlock()

	if err != nil {
		return err
	}

	if t.onSubmit != nil {
		t.onSubmit(submission)
	}

	return nil
}

func (t *Target) submit(price int64, quantity int) (Submission, error) {
	if t.agent < 0 {
		return Submission{}, ErrNoAgent
	}
	if !t.open[sell.SurfaceSellDialog] {
		return Submission{}, fmt.Errorf("%s: %w", sell.SurfaceSellDialog, ErrNotOpen)
	}

	stack := t.stacks[t.selected]
	if quantity <= 0 || stack.Quantity < quantity {
		return Submission{}, ErrShortStack
	}

	stack.Quantity -= quantity
	if stack.Quantity == 0 {
		delete(t.stacks, t.selected)
	} else {
		t.stacks[t.selected] = stack
	}

	submission := Submission{
		Agent:          t.agent,
		ItemID:         stack.ItemID,
		Location:       t.selected,
		Price:          price,
		Quantity:       quantity,
		ListingsBefore: t.listings[t.agent],
	}

	t.listings[t.agent]++
	t.submissions = append(t.submissions, submission)
	t.open[sell.SurfaceSellDialog] = false

	return submission, nil
}

func (t *Target) CancelSellDialog(ctx context.Context) error {
	unlock, err := t.enter(ctx, "CancelSellDialog")
	if err != nil {
		return err
	}
	defer unlock()

	t.open[sell.SurfaceSellDialog] = false

	return nil
}

func (t *Target) ConfirmDialogIfPresent(ctx context.Context) (bool, error) {
	unlock, err := t.enter(ctx, "ConfirmDialogIfPresent")
	if err != nil {
		return false, err
	}
	defer unlock()

	if !t.open[sell.SurfaceConfirmDialog] {
		return false, nil
	}

	t.open[sell.SurfaceConfirmDialog] = false
	t.confirms++

	return true, nil
}

func (t *Target) QueryAgentCount(ctx context.Context) (int, error) {
	unlock, err := t.enter(ctx, "QueryAgentCount")
	if err != nil {
		return 0, err
	}
	defer unlock()

	return len(t.listings), nil
}

func (t *Target) QueryAgentListingCount(ctx context.Context, index int) (int, error) {
	unlock, err := t.enter(ctx, "QueryAgentListingCount")
	if err != nil {
		return 0, err
	}
	defer unlock()

	if index < 0 || index >= len(t.listings) {
		return 0, fmt.Errorf("agent %d: %w", index, ErrOutOfRange)
	}

	return t.listings[index], nil
}

func (t *Target) QueryQuantityAt(ctx context.Context, location value.Location, itemID uint32) (int, error) {
	unlock, err := t.enter(ctx, "QueryQuantityAt")
	if err != nil {
		return 0, err
	}
	defer unlock()

	stack, ok := t.stacks[location]
	if !ok || stack.ItemID != itemID {
		return 0, nil
	}

	return stack.Quantity, nil
}

func (t *Target) FindNextLocationOfItem(ctx context.Context, itemID uint32, after value.Location) (value.Location, bool, error) {
	unlock, err := t.enter(ctx, "FindNextLocationOfItem")
	if err != nil {
		return value.Location{}, false, err
	}
	defer unlock()

	var (
		best  value.Location
		found bool
	)

	for location, stack := range t.stacks {
		if stack.ItemID != itemID || stack.Quantity <= 0 || !after.Before(location) {
			continue
		}
		if !found || location.Before(best) {
			best, found = location, true
		}
	}

	return best, found, nil
}

func (t *Target) QueryLowestCompetingPrice(ctx context.Context, itemID uint32, isHQ bool) (int64, bool, error) {
	unlock, err := t.enter(ctx, "QueryLowestCompetingPrice")
	if err != nil {
		return 0, false, err
	}
	defer unlock()

	if !t.open[sell.SurfaceComparePrices] {
		return 0, false, fmt.Errorf("%s: %w", sell.SurfaceComparePrices, ErrNotOpen)
	}

	price, ok := t.competing[entity.ItemKey{ItemID: itemID, IsHQ: isHQ}]

	return price, ok && price > 0, nil
}

// SetListings changes an agent's listing count from outside the engine.
func (t *Target) SetListings(agent, listings int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.listings[agent] = listings
}

func (t *Target) Submissions() []Submission {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.submissions)
}

func (t *Target) Vendored() []Stack {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.vendored)
}

// Invoked returns the text of every menu entry invoked so far.
func (t *Target) Invoked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.invoked)
}

func (t *Target) Confirms() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.confirms
}

// Calls returns the method names called so far, in order.
func (t *Target) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.calls)
}

func (t *Target) ResetCalls() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls = nil
}

func (t *Target) IsOpen(surface sell.Surface) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.open[surface]
}

func (t *Target) Listings(agent int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.listings[agent]
}

var _ sell.TargetSystem = (*Target)(nil)
