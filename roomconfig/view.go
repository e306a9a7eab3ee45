package roomconfig

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"smartoffice-console/metrics"
	"smartoffice-console/models"
)

var (
	ErrSaveInProgress       = errors.New("save already in progress")
	ErrNotConfirming        = errors.New("save has not been requested")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrViewClosed           = errors.New("room view closed")
)

const (
	MessageSaved      = "Settings saved successfully"
	MessageSaveFailed = "Failed to save settings"
	MessageConfirm    = "Are you sure you want to save these settings?"
)

// Backend is the subset of the REST client a room view needs.
type Backend interface {
	GetRoomConfig(ctx context.Context, token, officeID, roomID string) (models.RoomConfiguration, models.RoomStatus, error)
	UpdateRoomConfig(ctx context.Context, token, officeID, roomID string, update models.RoomConfigUpdate) error
	DeleteRoom(ctx context.Context, token, officeID, roomID string) error
}

// Commit describes a configuration that was persisted.
type Commit struct {
	OfficeID string
	RoomID   string
	User     string
	Before   models.RoomConfiguration
	After    models.RoomConfiguration
	Changes  []Change
}

// CommitObserver is told about every successful commit.
type CommitObserver interface {
	ConfigCommitted(ctx context.Context, c Commit)
}

type Options struct {
	// SendTargetsForNonAutoModes keeps targets of manual and off channels in
	// the submitted payload.
	SendTargetsForNonAutoModes bool
	Observers                  []CommitObserver
}

// Scope identifies the room a view edits and the credentials used for it.
type Scope struct {
	OfficeID string
	RoomID   string
	Token    string
	User     string
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message for the viewer.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// ConfirmationPrompt is returned by RequestSave. Nothing is persisted until
// CommitSave.
type ConfirmationPrompt struct {
	RoomID  string   `json:"roomId"`
	Message string   `json:"message"`
	Changes []Change `json:"changes"`
}

// State is a snapshot of a view.
type State struct {
	OfficeID   string                   `json:"officeId"`
	RoomID     string                   `json:"roomId"`
	Config     models.RoomConfiguration `json:"config"`
	Draft      models.RoomConfiguration `json:"draft"`
	Status     models.RoomStatus        `json:"status"`
	Loaded     bool                     `json:"loaded"`
	Fallback   bool                     `json:"fallback"`
	Dirty      bool                     `json:"dirty"`
	Saving     bool                     `json:"saving"`
	Confirming bool                     `json:"confirming"`
	Notice     *Notice                  `json:"notice,omitempty"`
}

// LoadResult reports the outcome of one Load.
type LoadResult struct {
	Config   models.RoomConfiguration
	Fallback bool
	// Applied is false when a newer load already landed or the view was closed.
	Applied bool
	Err     error
}

// View is the editable state of one room for one viewer. Network calls are
// made without holding the lock.
type View struct {
	backend Backend
	opts    Options

	mu         sync.Mutex
	scope      Scope
	config     models.RoomConfiguration
	draft      models.RoomConfiguration
	status     models.RoomStatus
	loaded     bool
	fallback   bool
	dirty      bool
	saving     bool
	confirming bool
	notice     *Notice
	closed     bool
	issued     uint64
	applied    uint64
}

func NewView(backend Backend, scope Scope, opts Options) *View {
	def := models.DefaultRoomConfiguration(scope.OfficeID, scope.RoomID)
	return &View{
		backend: backend,
		opts:    opts,
		scope:   scope,
		config:  def,
		draft:   def,
	}
}

func (v *View) RoomID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scope.RoomID
}

func (v *View) OfficeID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scope.OfficeID
}

// SetToken replaces the credential used for later calls.
func (v *View) SetToken(token string) {
	v.mu.Lock()
	v.scope.Token = token
	v.mu.Unlock()
}

// Load fetches the persisted configuration. A failed fetch populates the
// fallback configuration and marks the view as showing fallback data. Loads
// are sequenced: a response older than the last applied one is dropped.
func (v *View) Load(ctx context.Context) LoadResult {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return LoadResult{Err: ErrViewClosed}
	}
	v.issued++
	seq := v.issued
	scope := v.scope
	v.mu.Unlock()

	cfg, status, err := v.backend.GetRoomConfig(ctx, scope.Token, scope.OfficeID, scope.RoomID)
	fallback := false
	if err != nil {
		slog.Warn("room_config_load_failed",
			slog.String("office_id", scope.OfficeID),
			slog.String("room_id", scope.RoomID),
			slog.String("error", err.Error()),
		)
		cfg = models.DefaultRoomConfiguration(scope.OfficeID, scope.RoomID)
		status = models.RoomStatus{}
		fallback = true
	}
	metrics.RoomConfigLoaded(fallback)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || seq < v.applied {
		metrics.RoomConfigLoadDiscarded()
		return LoadResult{Config: cfg, Fallback: fallback, Err: err}
	}
	v.applied = seq
	v.config = cfg
	v.status = status
	v.fallback = fallback
	v.loaded = true
	if !v.dirty {
		v.draft = cfg
	}
	return LoadResult{Config: cfg, Fallback: fallback, Applied: true, Err: err}
}

func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() State {
	s := State{
		OfficeID:   v.scope.OfficeID,
		RoomID:     v.scope.RoomID,
		Config:     v.config,
		Draft:      v.draft,
		Status:     v.status,
		Loaded:     v.loaded,
		Fallback:   v.fallback,
		Dirty:      v.dirty,
		Saving:     v.saving,
		Confirming: v.confirming,
	}
	if v.notice != nil {
		n := *v.notice
		s.Notice = &n
	}
	return s
}

// StageEdit applies one validated edit to the draft. Editing closes a pending
// confirmation since its prompt no longer matches the draft.
func (v *View) StageEdit(channel models.Channel, field Field, value any) (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return State{}, ErrViewClosed
	}
	if v.saving {
		return v.snapshotLocked(), ErrSaveInProgress
	}
	draft, err := StageEdit(v.draft, channel, field, value)
	if err != nil {
		return v.snapshotLocked(), err
	}
	v.draft = draft
	v.dirty = len(Diff(v.config, v.draft)) > 0
	v.confirming = false
	v.notice = nil
	return v.snapshotLocked(), nil
}

// RequestSave moves the view into the confirming state.
func (v *View) RequestSave() (ConfirmationPrompt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ConfirmationPrompt{}, ErrViewClosed
	}
	if v.saving {
		return ConfirmationPrompt{}, ErrSaveInProgress
	}
	v.confirming = true
	changes := Diff(v.config, v.draft)
	if changes == nil {
		changes = []Change{}
	}
	return ConfirmationPrompt{RoomID: v.scope.RoomID, Message: MessageConfirm, Changes: changes}, nil
}

func (v *View) CancelSave() {
	v.mu.Lock()
	v.confirming = false
	v.mu.Unlock()
}

// CommitSave submits the whole draft as one full replace. On success the
// configuration is reloaded exactly once; on failure the draft is kept and an
// error notice is set. Nothing is retried.
func (v *View) CommitSave(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if v.saving {
		v.mu.Unlock()
		return ErrSaveInProgress
	}
	if !v.confirming {
		v.mu.Unlock()
		return ErrNotConfirming
	}
	v.saving = true
	v.confirming = false
	scope := v.scope
	before, draft := v.config, v.draft
	v.mu.Unlock()

	update := BuildUpdate(draft, v.opts.SendTargetsForNonAutoModes)
	err := v.backend.UpdateRoomConfig(ctx, scope.Token, scope.OfficeID, scope.RoomID, update)

	v.mu.Lock()
	v.saving = false
	closed := v.closed
	if err != nil {
		if !closed {
			v.notice = &Notice{Kind: NoticeError, Message: MessageSaveFailed}
		}
		v.mu.Unlock()
		metrics.RoomConfigSaved(false)
		slog.Error("room_config_save_failed",
			slog.String("office_id", scope.OfficeID),
			slog.String("room_id", scope.RoomID),
			slog.String("error", err.Error()),
		)
		return err
	}
	if !closed {
		v.dirty = false
		v.notice = &Notice{Kind: NoticeSuccess, Message: MessageSaved}
	}
	v.mu.Unlock()
	metrics.RoomConfigSaved(true)

	commit := Commit{
		OfficeID: scope.OfficeID,
		RoomID:   scope.RoomID,
		User:     scope.User,
		Before:   before,
		After:    draft,
		Changes:  Diff(before, draft),
	}
	for _, o := range v.opts.Observers {
		o.ConfigCommitted(ctx, commit)
	}

	if !closed {
		v.Load(ctx)
	}
	return nil
}

// DeleteRoom removes the room behind the same confirmation gate as saving.
// The view is closed once the backend accepts the delete.
func (v *View) DeleteRoom(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	scope := v.scope
	v.mu.Unlock()

	if err := v.backend.DeleteRoom(ctx, scope.Token, scope.OfficeID, scope.RoomID); err != nil {
		return err
	}
	v.Close()
	return nil
}

// Close detaches the view. Responses arriving afterwards are ignored.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
