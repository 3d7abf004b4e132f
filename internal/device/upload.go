package device

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/crosspoint/internal/config"
	"github.com/muurk/crosspoint/internal/logging"
	"github.com/muurk/crosspoint/internal/transfer"
)

const (
	// MaxChunkSize is the hard ceiling on the transfer chunk size.
	MaxChunkSize = 2048

	// ProgressMessage accompanies every progress report of an upload.
	ProgressMessage = "Transferring books to device..."
)

// UploadItem is one entry of a batch. The source is Path when set,
// otherwise the file behind Reader if it exposes a non-empty Name (as
// *os.File does). Name is the destination name; only its base is used.
type UploadItem struct {
	Path   string
	Reader io.Reader
	Name   string
}

type named interface {
	Name() string
}

// SourcePath returns the local file backing the item.
func (it UploadItem) SourcePath() (string, bool) {
	if it.Path != "" {
		return it.Path, true
	}
	if n, ok := it.Reader.(named); ok && n.Name() != "" {
		return n.Name(), true
	}
	return "", false
}

// DestinationName returns the file name used on the reader.
func (it UploadItem) DestinationName(source string) string {
	name := it.Name
	if name == "" {
		name = source
	}
	return path.Base(strings.ReplaceAll(name, `\`, "/"))
}

// UploadResult records one uploaded file.
type UploadResult struct {
	Filename string
	Size     int64
}

// ClampChunkSize applies the MaxChunkSize ceiling. Non-positive sizes
// fall back to the default.
func ClampChunkSize(requested int) (int, string) {
	switch {
	case requested > MaxChunkSize:
		return MaxChunkSize, fmt.Sprintf("[CrossPoint] chunk_size capped to %d (was %d)", MaxChunkSize, requested)
	case requested < 1:
		return config.DefaultChunkSize, fmt.Sprintf("[CrossPoint] chunk_size %d invalid, using %d", requested, config.DefaultChunkSize)
	default:
		return requested, ""
	}
}

// batchProgress folds per-file progress into one non-decreasing fraction.
type batchProgress struct {
	report ProgressReporter
	count  int
	last   float64
}

func (p *batchProgress) item(index int, sent, total int64) {
	if total <= 0 {
		return
	}
	p.emit((float64(index) + float64(sent)/float64(total)) / float64(p.count))
}

func (p *batchProgress) emit(fraction float64) {
	if fraction > 1 {
		fraction = 1
	}
	if fraction < p.last {
		fraction = p.last
	}
	p.last = fraction
	p.report(fraction, ProgressMessage)
}

// Upload sends items to the reader in order and returns one result per
// item. The first failing item aborts the batch; files already sent stay
// on the reader.
func (d *Driver) Upload(ctx context.Context, items []UploadItem) ([]UploadResult, error) {
	opts := d.loadConfig()

	d.mu.Lock()
	host, port := d.session.Target(opts)
	report := d.progress
	d.mu.Unlock()

	chunkSize, note := ClampChunkSize(opts.ChunkSize)
	if note != "" {
		d.log(note)
		logging.Warn("Chunk size adjusted",
			zap.Int("requested", opts.ChunkSize),
			zap.Int("used", chunkSize))
	}

	// Every source is resolved before anything is sent, so an in-memory
	// item leaves the reader untouched.
	sources := make([]string, len(items))
	for i, item := range items {
		source, ok := item.SourcePath()
		if !ok {
			return nil, &ControlError{Op: "upload", Desc: "in-memory uploads are not supported", Err: ErrInMemoryUpload}
		}
		sources[i] = source
	}

	batch := uuid.NewString()
	logging.Info("Upload batch started",
		zap.String("batch", batch),
		zap.Int("files", len(items)),
		zap.String("host", host),
		zap.Int("port", port))
	if opts.Debug {
		d.log(fmt.Sprintf("[CrossPoint] upload %d file(s) to %s:%d%s", len(items), host, port, opts.Path))
	}

	progress := &batchProgress{report: report, count: len(items)}
	results := make([]UploadResult, 0, len(items))

	for i, item := range items {
		source := sources[i]
		filename := item.DestinationName(source)

		index := i
		err := d.transfer.Transfer(ctx, transfer.Request{
			Host:       host,
			Port:       port,
			RemotePath: opts.Path,
			Filename:   filename,
			LocalPath:  source,
			ChunkSize:  chunkSize,
			Debug:      opts.Debug,
			Logger:     d.log,
		}, func(sent, total int64) {
			progress.item(index, sent, total)
		})
		if err != nil {
			d.log(fmt.Sprintf("[CrossPoint] upload of %s failed: %v", filename, err))
			logging.Error("Upload failed",
				zap.String("batch", batch),
				zap.String("file", filename),
				zap.Error(err))
			return nil, err
		}

		info, err := os.Stat(source)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", source, err)
		}
		results = append(results, UploadResult{Filename: filename, Size: info.Size()})
	}

	progress.emit(1.0)
	logging.Info("Upload batch finished", zap.String("batch", batch), zap.Int("files", len(results)))
	return results, nil
}
