package form

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/catalog/gateway"
	"github.com/tair/storefront/internal/media"
	"github.com/tair/storefront/pkg/logger"
)

// Mode tells whether submit creates or updates
type Mode string

const (
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
)

// Phase is the progress of the current submission
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseSubmitting     Phase = "submitting"
	PhaseUploadingImage Phase = "uploading_image"
)

// Change actions reported to the ChangeNotifier
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// DefaultImageFolder is the object store folder for product images
const DefaultImageFolder = "products"

// Catalog persists products
type Catalog interface {
	Create(ctx context.Context, payload domain.Payload) (domain.Product, error)
	Update(ctx context.Context, id string, payload domain.Payload) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Refresher reloads the visible catalog after a change
type Refresher interface {
	Reload(ctx context.Context) error
}

// ChangeNotifier announces saved changes to other processes
type ChangeNotifier interface {
	NotifyProductChanged(ctx context.Context, action, productID string) error
}

// State is an observable snapshot of the machine
type State struct {
	Mode         Mode            `json:"mode"`
	Phase        Phase           `json:"phase"`
	Busy         bool            `json:"busy"`
	Editing      *domain.Product `json:"editing,omitempty"`
	Form         FormState       `json:"form"`
	Feedback     string          `json:"feedback,omitempty"`
	Error        string          `json:"error,omitempty"`
	Preview      string          `json:"preview,omitempty"`
	PendingImage bool            `json:"pendingImage"`
}

// Machine owns the product draft and sequences its submission.
// At most one submit or delete runs at a time; others get ErrBusy.
type Machine struct {
	catalog   Catalog
	images    media.Store
	folder    string
	refresher Refresher
	notifier  ChangeNotifier

	busy    atomic.Bool
	mu      sync.Mutex
	state   State
	pending *media.File
}

// Option configures a Machine
type Option func(*Machine)

func WithRefresher(r Refresher) Option {
	return func(m *Machine) { m.refresher = r }
}

func WithNotifier(n ChangeNotifier) Option {
	return func(m *Machine) { m.notifier = n }
}

func WithImageFolder(folder string) Option {
	return func(m *Machine) {
		if folder != "" {
			m.folder = folder
		}
	}
}

// NewMachine creates a machine in the creating mode
func NewMachine(catalog Catalog, images media.Store, opts ...Option) *Machine {
	m := &Machine{
		catalog: catalog,
		images:  images,
		folder:  DefaultImageFolder,
		state:   blankState(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func blankState() State {
	return State{Mode: ModeCreating, Phase: PhaseIdle, Form: DefaultFormState()}
}

// Snapshot returns the current state
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state
	s.Busy = m.busy.Load()
	s.PendingImage = m.pending != nil
	if s.Editing != nil {
		p := *s.Editing
		s.Editing = &p
	}
	return s
}

// StartEditing replaces the draft with a snapshot of p
func (m *Machine) StartEditing(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = State{
		Mode:    ModeEditing,
		Phase:   PhaseIdle,
		Editing: &p,
		Form:    ProductToFormState(p),
	}
	m.pending = nil
}

// CancelEditing discards the draft and returns to creating
func (m *Machine) CancelEditing() {
	m.reset("")
}

// Close discards the draft like CancelEditing
func (m *Machine) Close() {
	m.reset("")
}

func (m *Machine) reset(feedback string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = blankState()
	m.state.Feedback = feedback
	m.pending = nil
}

// ChangeField sets one draft field by name
func (m *Machine) ChangeField(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Form.set(name, value)
}

// SelectImageFile stages an image for upload on the next submit. A nil file
// clears the staged image. An invalid file is rejected and the previous
// selection is kept.
func (m *Machine) SelectImageFile(f *media.File) error {
	if f == nil {
		m.mu.Lock()
		m.pending = nil
		m.state.Preview = ""
		m.mu.Unlock()
		return nil
	}

	if v := m.images.Validate(*f); !v.Valid {
		m.mu.Lock()
		m.state.Error = v.Error
		m.mu.Unlock()
		return &UploadError{Message: v.Error}
	}

	preview := media.Preview(*f)
	staged := *f

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &staged
	m.state.Preview = preview
	m.state.Error = ""
	m.state.Form.ImageURL = ""
	m.state.Form.ThumbnailURL = ""
	return nil
}

// Submit validates the draft, uploads a staged image, then creates or updates
// the product. On failure the draft is kept so the user can retry.
func (m *Machine) Submit(ctx context.Context) (domain.Product, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return domain.Product{}, ErrBusy
	}
	defer m.busy.Store(false)

	m.mu.Lock()
	form := m.state.Form
	mode := m.state.Mode
	var editing *domain.Product
	if m.state.Editing != nil {
		p := *m.state.Editing
		editing = &p
	}
	pending := m.pending
	m.state.Phase = PhaseSubmitting
	m.state.Feedback = ""
	m.state.Error = ""
	m.mu.Unlock()

	payload, err := FormToPayload(form)
	if err == nil && (mode != ModeEditing || editing == nil) && payload.Name == nil {
		err = &ValidationError{Field: FieldName, Message: "Name is required."}
	}
	if err != nil {
		m.fail(err.Error())
		return domain.Product{}, err
	}

	uploaded := ""
	if pending != nil {
		m.setPhase(PhaseUploadingImage)

		stored, err := m.images.Store(ctx, *pending, m.folder)
		if err != nil {
			logger.Error(ctx).Err(err).Str("file", pending.Name).Msg("Image upload failed")
			m.fail(MsgUploadFailed)
			return domain.Product{}, &UploadError{Message: MsgUploadFailed, Err: err}
		}

		uploaded = stored.URL
		payload.ImageURL = &uploaded
		payload.ThumbnailURL = &uploaded

		m.mu.Lock()
		m.pending = nil
		m.state.Preview = ""
		m.state.Form.ImageURL = uploaded
		m.state.Form.ThumbnailURL = uploaded
		m.state.Phase = PhaseSubmitting
		m.mu.Unlock()
	}

	if payload.ThumbnailURL == nil && payload.ImageURL != nil {
		payload.ThumbnailURL = payload.ImageURL
	}

	var (
		saved    domain.Product
		action   string
		feedback string
	)
	if mode == ModeEditing && editing != nil {
		saved, err = m.catalog.Update(ctx, editing.ID, payload)
		action, feedback = ActionUpdated, MsgUpdated
	} else {
		saved, err = m.catalog.Create(ctx, payload)
		action, feedback = ActionCreated, MsgCreated
	}
	if err != nil {
		m.fail(gateway.Message(err, gateway.FallbackRequestFailed))
		return domain.Product{}, err
	}

	if editing != nil && uploaded != "" {
		m.discardImage(ctx, editing.ImageURL, uploaded)
	}

	m.reset(feedback)
	m.afterChange(ctx, action, saved.ID)

	return saved, nil
}

// Delete removes a product once confirm approves it. A nil confirm is
// treated as a missing confirmation step.
func (m *Machine) Delete(ctx context.Context, id string, confirm func(id string) bool) error {
	if confirm == nil {
		return ErrConfirmationRequired
	}
	if !confirm(id) {
		return ErrCancelled
	}
	if !m.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer m.busy.Store(false)

	if err := m.catalog.Delete(ctx, id); err != nil {
		m.mu.Lock()
		m.state.Error = gateway.Message(err, gateway.FallbackRequestFailed)
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	if m.state.Editing != nil && m.state.Editing.ID == id {
		m.state = blankState()
		m.pending = nil
	}
	m.state.Error = ""
	m.state.Feedback = MsgDeleted
	m.mu.Unlock()

	m.afterChange(ctx, ActionDeleted, id)
	return nil
}

func (m *Machine) setPhase(p Phase) {
	m.mu.Lock()
	m.state.Phase = p
	m.mu.Unlock()
}

func (m *Machine) fail(msg string) {
	m.mu.Lock()
	m.state.Phase = PhaseIdle
	m.state.Error = msg
	m.mu.Unlock()
}

// discardImage removes the image replaced by an edit. Failures are only logged
// because the product itself has already been saved.
func (m *Machine) discardImage(ctx context.Context, old, replacement string) {
	if old == "" || old == replacement || media.IsDataURI(old) {
		return
	}
	if err := m.images.Delete(ctx, old); err != nil {
		logger.Warn(ctx).Err(err).Str("image_url", old).Msg("Failed to delete replaced product image")
	}
}

func (m *Machine) afterChange(ctx context.Context, action, productID string) {
	logger.Info(ctx).
		Str("action", action).
		Str("product_id", productID).
		Msg("Product changed")

	if m.notifier != nil {
		if err := m.notifier.NotifyProductChanged(ctx, action, productID); err != nil {
			logger.Warn(ctx).Err(err).Str("product_id", productID).Msg("Failed to publish product change")
		}
	}
	if m.refresher != nil {
		if err := m.refresher.Reload(ctx); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to reload catalog")
		}
	}
}
