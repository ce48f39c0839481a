// Package resolve drives one scan or search from raw input to a chosen
// product: extract a barcode, fan out to every lookup source, aggregate
// the candidates and let the operator resolve the result.
package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hikkoshi-box/hikkoshigo/internal/barcode"
	"github.com/hikkoshi-box/hikkoshigo/internal/catalog"
	"github.com/hikkoshi-box/hikkoshigo/internal/models"
	"github.com/hikkoshi-box/hikkoshigo/internal/store"
	"github.com/hikkoshi-box/hikkoshigo/internal/suggest"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// State names for one resolution session.
type State string

const (
	StateIdle         State = "idle"
	StateSearching    State = "searching"
	StatePresenting   State = "presenting"
	StateNoCandidates State = "no_candidates"
	StateResolved     State = "resolved"
	StateManualDraft  State = "manual_draft"
	StateCancelled    State = "cancelled"
)

// Scan payload formats.
const (
	FormatLinear = "linear"
	FormatMatrix = "matrix"
)

// ScanPayload is the raw result of one scan event.
type ScanPayload struct {
	RawValue string `json:"rawValue"`
	Format   string `json:"format"`
}

// Session tracks one resolution flow from scan to decision.
type Session struct {
	ID          string               `json:"id"`
	State       State                `json:"state"`
	Payload     ScanPayload          `json:"payload"`
	Barcode     string               `json:"barcode,omitempty"`
	Keyword     string               `json:"keyword,omitempty"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
	// CanPrintRaw offers the raw payload for direct label printing when a
	// matrix-code scan produced no candidates.
	CanPrintRaw bool `json:"canPrintRaw"`
}

// AISuggester is the candidate generator the flow fans out to.
type AISuggester interface {
	Suggest(ctx context.Context, rawInput, barcodeHint, nameHint string, maxResults int) []suggest.Suggestion
}

// CommerceLookup is a catalog searchable by both barcode and keyword.
type CommerceLookup interface {
	catalog.BarcodeLookup
	catalog.KeywordLookup
}

// Named errors the flow surfaces besides operator-input validation.
var (
	ErrCreateProduct    = errors.New("failed to create product")
	ErrUpdateProduct    = errors.New("failed to update product")
	ErrSessionCancelled = errors.New("session was cancelled")
)

// Flow wires the extractor, the three catalog clients and the AI
// generator into the session state machine.
type Flow struct {
	store    store.ProductStore
	local    *catalog.LocalClient
	open     catalog.BarcodeLookup
	commerce CommerceLookup
	ai       AISuggester
	timeout  time.Duration
	maxHits  int

	// Notify, when set, observes every state transition (WebSocket push).
	// It receives a snapshot taken under the lock, safe to read and
	// serialize from any goroutine.
	Notify func(Session)

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a resolution flow over the given collaborators.
func New(s store.ProductStore, local *catalog.LocalClient, open catalog.BarcodeLookup, commerce CommerceLookup, ai AISuggester, timeout time.Duration, maxHits int) *Flow {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxHits < 1 {
		maxHits = 5
	}
	return &Flow{
		store:    s,
		local:    local,
		open:     open,
		commerce: commerce,
		ai:       ai,
		timeout:  timeout,
		maxHits:  maxHits,
		sessions: make(map[string]*Session),
	}
}

// transitionLocked advances the state; f.mu must be held. A cancelled
// session absorbs late fan-in without changing state.
func (f *Flow) transitionLocked(sess *Session, next State) bool {
	if sess.State == StateCancelled {
		return false
	}
	sess.State = next
	return true
}

func (f *Flow) transition(sess *Session, next State) {
	f.mu.Lock()
	ok := f.transitionLocked(sess, next)
	snap := snapshotLocked(sess)
	f.mu.Unlock()
	if ok && f.Notify != nil {
		f.Notify(snap)
	}
}

// Session returns a live session by id, or nil.
func (f *Flow) Session(id string) *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id]
}

// snapshotLocked copies a session; f.mu must be held.
func snapshotLocked(sess *Session) Session {
	cp := *sess
	cp.Suggestions = append([]suggest.Suggestion(nil), sess.Suggestions...)
	return cp
}

// Snapshot copies a session for serialization. Sessions are mutated under
// f.mu by other requests, so handlers must never marshal the live struct.
func (f *Flow) Snapshot(sess *Session) Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return snapshotLocked(sess)
}

// cancelled reads the session state under the lock.
func (f *Flow) cancelled(sess *Session) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sess.State == StateCancelled
}

// Cancel dismisses a session. In-flight lookups run to completion but
// their results are discarded; nothing is persisted afterwards.
func (f *Flow) Cancel(id string) {
	f.mu.Lock()
	sess, ok := f.sessions[id]
	var snap Session
	if ok {
		sess.State = StateCancelled
		snap = snapshotLocked(sess)
	}
	f.mu.Unlock()
	if ok && f.Notify != nil {
		f.Notify(snap)
	}
}

// Scan starts a resolution session for a raw scan payload: extracts a
// barcode and keyword, fans out to all sources, aggregates and lands in
// Presenting or NoCandidates.
func (f *Flow) Scan(ctx context.Context, payload ScanPayload) *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		State:   StateIdle,
		Payload: payload,
	}
	sess.Barcode, _ = barcode.Extract(payload.RawValue)
	sess.Keyword = barcode.ExtractKeyword(payload.RawValue)

	f.mu.Lock()
	f.sessions[sess.ID] = sess
	f.mu.Unlock()

	f.transition(sess, StateSearching)

	merged := f.fanOut(ctx, sess)
	f.finish(sess, merged)
	return sess
}

// SearchByName starts a resolution session for a typed query instead of
// a scan.
func (f *Flow) SearchByName(ctx context.Context, query string) *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		State:   StateIdle,
		Payload: ScanPayload{RawValue: query},
		Keyword: strings.TrimSpace(query),
	}
	f.mu.Lock()
	f.sessions[sess.ID] = sess
	f.mu.Unlock()

	f.transition(sess, StateSearching)
	merged := f.fanOut(ctx, sess)
	f.finish(sess, merged)
	return sess
}

func (f *Flow) finish(sess *Session, merged []suggest.Suggestion) {
	f.mu.Lock()
	sess.Suggestions = merged
	next := StatePresenting
	if len(merged) == 0 {
		sess.CanPrintRaw = sess.Payload.Format == FormatMatrix
		next = StateNoCandidates
	}
	ok := f.transitionLocked(sess, next)
	snap := snapshotLocked(sess)
	f.mu.Unlock()
	if ok && f.Notify != nil {
		f.Notify(snap)
	}
}

// skipAI reports whether the scan is unambiguously "just a barcode with
// nothing else to go on": a barcode-keyed catalog lookup already ran and
// free text would give the model nothing. The boundary is deliberate;
// a "barcode:"-prefixed payload still gets the AI pass.
func skipAI(sess *Session) bool {
	raw := strings.TrimSpace(sess.Payload.RawValue)
	return sess.Barcode != "" &&
		sess.Keyword == "" &&
		suggest.DigitsOnly(raw) == sess.Barcode &&
		!strings.HasPrefix(strings.ToLower(raw), "barcode:")
}

// fanOut queries all sources concurrently and merges their results. The
// clients never fail (empty means "no opinion"), so the group exists only
// to join the goroutines.
func (f *Flow) fanOut(ctx context.Context, sess *Session) []suggest.Suggestion {
	slots := make([][]suggest.Suggestion, 6)
	g, gctx := errgroup.WithContext(ctx)

	run := func(slot int, fn func(context.Context) []suggest.Suggestion) {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, f.timeout)
			defer cancel()
			slots[slot] = fn(callCtx)
			return nil
		})
	}

	if sess.Barcode != "" {
		run(0, func(c context.Context) []suggest.Suggestion {
			return f.local.LookupByBarcode(c, sess.Barcode)
		})
		run(1, func(c context.Context) []suggest.Suggestion {
			return f.open.LookupByBarcode(c, sess.Barcode)
		})
		run(2, func(c context.Context) []suggest.Suggestion {
			return f.commerce.LookupByBarcode(c, sess.Barcode)
		})
	}
	if sess.Keyword != "" {
		run(3, func(c context.Context) []suggest.Suggestion {
			return f.local.LookupByKeyword(c, sess.Keyword, f.maxHits)
		})
		run(4, func(c context.Context) []suggest.Suggestion {
			return f.commerce.LookupByKeyword(c, sess.Keyword, f.maxHits)
		})
	}
	if f.ai != nil && !skipAI(sess) {
		run(5, func(c context.Context) []suggest.Suggestion {
			return f.ai.Suggest(c, sess.Payload.RawValue, sess.Barcode, sess.Keyword, f.maxHits)
		})
	}

	_ = g.Wait()

	var all []suggest.Suggestion
	for _, slot := range slots {
		all = append(all, slot...)
	}
	return suggest.Merge(all)
}

// Resolve turns the operator's pick into a product. When the suggestion
// references a record still present in the store (by id, else by
// normalized barcode) that record is returned as-is with existing=true.
// Otherwise a draft is materialized for manual-edit confirmation; the
// caller persists it afterwards via CreateProduct. A cancelled session
// returns ErrSessionCancelled.
func (f *Flow) Resolve(sess *Session, chosen suggest.Suggestion) (product *models.Product, existing bool, err error) {
	if f.cancelled(sess) {
		return nil, false, ErrSessionCancelled
	}
	if chosen.ExistingProductID != 0 {
		p, err := f.store.FindByID(chosen.ExistingProductID)
		if err != nil {
			return nil, false, err
		}
		if p == nil {
			if bc := suggest.NormalizeBarcode(chosen.Barcode); bc != "" {
				p, err = f.store.FindByBarcode(bc)
				if err != nil {
					return nil, false, err
				}
			}
		}
		if p != nil {
			f.transition(sess, StateResolved)
			return p, true, nil
		}
	}

	draft := f.materializeDraft(sess, chosen)
	f.transition(sess, StateResolved)
	return draft, false, nil
}

func (f *Flow) materializeDraft(sess *Session, chosen suggest.Suggestion) *models.Product {
	bc := suggest.NormalizeBarcode(chosen.Barcode)
	if bc == "" {
		bc = sess.Barcode
	}
	name := strings.TrimSpace(chosen.Name)
	if name == "" {
		name = "名称未設定"
	}

	var noteParts []string
	if chosen.Source != "" {
		noteParts = append(noteParts, "出典: "+chosen.Source)
	}
	if chosen.Reason != "" {
		noteParts = append(noteParts, chosen.Reason)
	}
	if raw := strings.TrimSpace(sess.Payload.RawValue); raw != "" {
		noteParts = append(noteParts, "入力: "+raw)
	}

	// Keep the catalog record the draft came from, for later re-inspection.
	rawData, err := json.Marshal(chosen)
	if err != nil {
		rawData = nil
	}

	return &models.Product{
		Barcode:     bc,
		Name:        name,
		Category:    suggest.NormalizeCategory(chosen.Category),
		Price:       chosen.Price,
		Description: chosen.Description,
		ImageURL:    chosen.ImageURL,
		Brand:       chosen.Brand,
		Quantity:    1,
		Scanned:     sess.Payload.Format != "",
		Notes:       strings.Join(noteParts, " / "),
		RawData:     datatypes.JSON(rawData),
	}
}

// ManualDraft opens a draft with only barcode and name hints pre-filled,
// for full manual entry after the operator declines all candidates.
func (f *Flow) ManualDraft(sess *Session) (*models.Product, error) {
	if f.cancelled(sess) {
		return nil, ErrSessionCancelled
	}
	f.transition(sess, StateManualDraft)
	return &models.Product{
		Barcode:  sess.Barcode,
		Name:     sess.Keyword,
		Category: models.CategoryOther,
		Quantity: 1,
		Scanned:  sess.Payload.Format != "",
	}, nil
}

// CreateProduct persists a confirmed draft. The store enforces barcode
// uniqueness; missing required fields are operator-input errors.
func (f *Flow) CreateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if !suggest.IsValidBarcode(p.Barcode) {
		return fmt.Errorf("barcode must be 8-18 digits")
	}
	if _, err := f.store.Insert(p); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateProduct, err)
	}
	return nil
}

// UpdateProduct persists changes to an existing record.
func (f *Flow) UpdateProduct(p *models.Product) error {
	if p.ID == 0 {
		return fmt.Errorf("product id is required")
	}
	if _, err := f.store.Update(p); err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateProduct, err)
	}
	return nil
}
