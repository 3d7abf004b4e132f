package device

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/crosspoint/internal/config"
	"github.com/muurk/crosspoint/internal/discovery"
	"github.com/muurk/crosspoint/internal/logging"
	"github.com/muurk/crosspoint/internal/transfer"
)

const (
	// Name is shown to the user for the reader.
	Name = "CrossPoint Reader"

	// DeviceVersion is the descriptor version reported by Info.
	DeviceVersion = "1"

	// NominalSpace is reported by TotalSpace and FreeSpace. The reader does
	// not report its card capacity.
	NominalSpace int64 = 10 * 1024 * 1024 * 1024

	storeUUIDPrefix = "crosspoint-"
)

// Formats lists the book formats the reader accepts.
var Formats = []string{"epub"}

// ConfigSource supplies a configuration snapshot. Load is called at the
// start of every operation.
type ConfigSource interface {
	Load() (*config.Options, error)
}

// ProgressReporter receives the batch progress fraction in [0, 1].
type ProgressReporter func(fraction float64, message string)

// StoreInfo describes the main storage of the reader.
type StoreInfo struct {
	UUID    string
	Name    string
	Version string
}

// DeviceInfo is the descriptor returned by Info.
type DeviceInfo struct {
	Name            string
	Version         string
	SoftwareVersion string
	MIMEType        string
	Main            StoreInfo
}

// Space is a capacity triple for main memory and the two card slots.
type Space struct {
	Main  int64
	CardA int64
	CardB int64
}

// Plugin is the surface a host application drives.
type Plugin interface {
	Detect(ctx context.Context) (Session, bool)
	Open() error
	Info() DeviceInfo
	Upload(ctx context.Context, items []UploadItem) ([]UploadResult, error)
	Delete(paths []string) error
	Eject()
	Start() error
	Stop()
	TotalSpace() Space
	FreeSpace() Space
	Books() []string
	SyncBooklists() error
	CardPrefix() (string, string)
	SetProgressReporter(r ProgressReporter)
}

var _ Plugin = (*Driver)(nil)

// Options configures a Driver. Nil fields get defaults.
type Options struct {
	Config     ConfigSource
	Discoverer discovery.Discoverer
	Transferer transfer.Transferer
	Sink       *logging.Sink
	Clock      Clock
}

// Driver implements Plugin for one reader.
type Driver struct {
	mu       sync.Mutex
	session  Session
	coord    Coordinator
	config   ConfigSource
	transfer transfer.Transferer
	sink     *logging.Sink
	clock    Clock
	progress ProgressReporter
}

// New creates a disconnected driver.
func New(opts Options) *Driver {
	d := &Driver{
		config:   opts.Config,
		transfer: opts.Transferer,
		sink:     opts.Sink,
		clock:    opts.Clock,
	}
	if d.config == nil {
		d.config = config.Static{}
	}
	if d.transfer == nil {
		d.transfer = transfer.NewClient()
	}
	if d.sink == nil {
		d.sink = logging.NewSink(logging.DefaultSinkCapacity)
	}
	if d.clock == nil {
		d.clock = time.Now
	}
	d.coord = Coordinator{
		Session:    &d.session,
		Discoverer: opts.Discoverer,
		Log:        d.log,
	}
	d.SetProgressReporter(nil)
	return d
}

// Log returns the driver's trace.
func (d *Driver) Log() *logging.Sink {
	return d.sink
}

// Session returns a copy of the current session.
func (d *Driver) Session() Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

func (d *Driver) log(message string) {
	d.sink.Append(message)
	logging.Debug(message, zap.String("component", "driver"))
}

// loadConfig falls back to defaults when the store cannot be read so that
// presence polling keeps working with a broken config file.
func (d *Driver) loadConfig() *config.Options {
	opts, err := d.config.Load()
	if err != nil {
		d.log(fmt.Sprintf("[CrossPoint] config unreadable, using defaults: %v", err))
		return config.NewOptions()
	}
	return opts
}

// Detect returns the session once a reader is known. While connected it
// does not run discovery again.
func (d *Driver) Detect(ctx context.Context) (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session.Connected() {
		return d.session, true
	}

	opts := d.loadConfig()
	if opts.Debug {
		d.log("[CrossPoint] detect")
	}

	dev, ok := d.coord.Discover(ctx, d.clock(), opts)
	if !ok {
		if opts.Debug {
			d.log("[CrossPoint] discovery failed")
		}
		return Session{}, false
	}

	from := d.session.State
	d.session.connect(dev.Host, dev.Port)
	logging.LogSessionTransition(from.String(), d.session.State.String(), dev.Host, dev.Port)
	if opts.Debug {
		d.log(fmt.Sprintf("[CrossPoint] discovered %s %d", dev.Host, dev.Port))
	}
	return d.session, true
}

// Open succeeds only after Detect found a reader.
func (d *Driver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.session.Connected() {
		return &ControlError{Op: "open", Desc: "device not open", Err: ErrDeviceNotOpen}
	}
	return nil
}

// Info describes the reader. The store UUID is derived from the connected
// host, or the configured one when disconnected.
func (d *Driver) Info() DeviceInfo {
	opts := d.loadConfig()

	d.mu.Lock()
	host, _ := d.session.Target(opts)
	d.mu.Unlock()

	return DeviceInfo{
		Name:            Name,
		Version:         DeviceVersion,
		SoftwareVersion: DeviceVersion,
		Main: StoreInfo{
			UUID:    StoreUUID(host),
			Name:    Name,
			Version: DeviceVersion,
		},
	}
}

// StoreUUID derives a stable store identifier from a host address.
func StoreUUID(host string) string {
	return storeUUIDPrefix + strings.ReplaceAll(host, ".", "-")
}

// Delete always fails; the reader cannot remove books.
func (d *Driver) Delete(paths []string) error {
	return &ControlError{Op: "delete", Desc: "device does not support deleting books", Err: ErrDeleteUnsupported}
}

// Eject forgets the reader. A transfer already running is not interrupted.
func (d *Driver) Eject() {
	d.disconnect("eject")
}

// Start is a no-op.
func (d *Driver) Start() error {
	return nil
}

// Stop forgets the reader.
func (d *Driver) Stop() {
	d.disconnect("stop")
}

func (d *Driver) disconnect(reason string) {
	opts := d.loadConfig()

	d.mu.Lock()
	defer d.mu.Unlock()

	from := d.session.State
	host, port := d.session.Host, d.session.Port
	d.session.disconnect()
	logging.LogSessionTransition(from.String(), d.session.State.String(), host, port)
	if opts.Debug && from != d.session.State {
		d.log(fmt.Sprintf("[CrossPoint] %s: disconnected from %s:%d", reason, host, port))
	}
}

// TotalSpace returns NominalSpace for main memory.
func (d *Driver) TotalSpace() Space {
	return Space{Main: NominalSpace}
}

// FreeSpace returns NominalSpace for main memory.
func (d *Driver) FreeSpace() Space {
	return Space{Main: NominalSpace}
}

// Books is always empty.
func (d *Driver) Books() []string {
	return []string{}
}

// SyncBooklists is a no-op.
func (d *Driver) SyncBooklists() error {
	return nil
}

// CardPrefix reports no card slots.
func (d *Driver) CardPrefix() (string, string) {
	return "", ""
}

// SetProgressReporter installs r; nil discards progress.
func (d *Driver) SetProgressReporter(r ProgressReporter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r == nil {
		r = func(float64, string) {}
	}
	d.progress = r
}
