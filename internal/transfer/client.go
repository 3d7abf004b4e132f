package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/crosspoint/internal/logging"
	"github.com/muurk/crosspoint/internal/version"
)

const (
	// DefaultHandshakeTimeout bounds the websocket dial
	DefaultHandshakeTimeout = 5 * time.Second

	// DefaultAckTimeout bounds each wait for a reader message
	DefaultAckTimeout = 30 * time.Second

	// DefaultWriteTimeout bounds each chunk write
	DefaultWriteTimeout = 10 * time.Second

	msgStart    = "START"
	msgReady    = "READY"
	msgDone     = "DONE"
	msgError    = "ERROR"
	msgProgress = "PROGRESS"
)

// startEscaper percent-encodes the START field separator. '%' is encoded
// as well so a name that already contains "%3A" survives the round trip.
var startEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// startFrame builds the START message. Filename and path are
// percent-encoded so ':' in a title cannot shift the size field.
func startFrame(filename string, size int64, remotePath string) string {
	return fmt.Sprintf("%s:%s:%d:%s", msgStart, startEscaper.Replace(filename), size, startEscaper.Replace(remotePath))
}

// ProgressFunc receives the bytes sent so far and the file size.
type ProgressFunc func(sent, total int64)

// Request describes one file transfer.
type Request struct {
	Host       string
	Port       int
	RemotePath string
	Filename   string
	LocalPath  string
	ChunkSize  int
	Debug      bool
	Logger     func(string)
}

func (r *Request) logf(format string, args ...any) {
	if !r.Debug || r.Logger == nil {
		return
	}
	r.Logger(fmt.Sprintf(format, args...))
}

// Validate checks the request before any connection is made.
func (r *Request) Validate() error {
	if r.Host == "" {
		return NewValidationError("host is required")
	}
	if r.Port < 1 || r.Port > 65535 {
		return NewValidationError(fmt.Sprintf("port %d out of range", r.Port))
	}
	if r.Filename == "" {
		return NewValidationError("filename is required")
	}
	if strings.ContainsAny(r.Filename, "/\\") {
		return NewValidationError(fmt.Sprintf("filename %q must not contain a path separator", r.Filename))
	}
	if r.ChunkSize < 1 {
		return NewValidationError(fmt.Sprintf("chunk size %d must be positive", r.ChunkSize))
	}
	if r.LocalPath == "" {
		return NewValidationError("local path is required")
	}
	return nil
}

// URL returns the websocket endpoint of the reader.
func (r *Request) URL() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(r.Host, strconv.Itoa(r.Port)),
		Path:   "/",
	}
	return u.String()
}

// Transferer sends one file to a reader.
type Transferer interface {
	Transfer(ctx context.Context, req Request, onProgress ProgressFunc) error
}

// Client implements Transferer with gorilla/websocket.
type Client struct {
	Dialer       *websocket.Dialer
	AckTimeout   time.Duration
	WriteTimeout time.Duration
}

// NewClient creates a client with default timeouts.
func NewClient() *Client {
	return &Client{
		Dialer: &websocket.Dialer{
			Proxy:            nil,
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
		AckTimeout:   DefaultAckTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Transfer streams req.LocalPath to the reader, calling onProgress after
// every chunk. It returns once the reader confirms with DONE.
func (c *Client) Transfer(ctx context.Context, req Request, onProgress ProgressFunc) error {
	if err := req.Validate(); err != nil {
		return err
	}

	f, err := os.Open(req.LocalPath)
	if err != nil {
		return withFile(NewIOError("cannot open file", err), req.Filename)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return withFile(NewIOError("cannot stat file", err), req.Filename)
	}
	total := info.Size()

	dialer := c.Dialer
	if dialer == nil {
		dialer = NewClient().Dialer
	}

	endpoint := req.URL()
	req.logf("Connecting to %s", endpoint)
	header := http.Header{"User-Agent": []string{version.UserAgent()}}
	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return withFile(NewNetworkError("cannot connect to reader", req.Host, err), req.Filename)
	}
	defer func() { _ = conn.Close() }()

	// Unblock pending reads and writes when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
		_ = conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	start := startFrame(req.Filename, total, req.RemotePath)
	if err := c.writeMessage(conn, websocket.TextMessage, []byte(start)); err != nil {
		return c.fail(ctx, req, err)
	}
	req.logf("Sent %s", start)

	if err := c.awaitReply(conn, msgReady); err != nil {
		return c.fail(ctx, req, err)
	}

	buf := make([]byte, req.ChunkSize)
	var sent int64
	for sent < total {
		n, rerr := io.ReadFull(f, buf)
		if n > 0 {
			if err := c.writeMessage(conn, websocket.BinaryMessage, buf[:n]); err != nil {
				return c.fail(ctx, req, err)
			}
			sent += int64(n)
			logging.LogTransferChunk(req.Filename, sent, total, n)
			if onProgress != nil {
				onProgress(sent, total)
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return withFile(NewIOError("read failed", rerr), req.Filename)
		}
	}
	if sent != total {
		return withFile(NewIOError(fmt.Sprintf("file changed during transfer (%d of %d bytes)", sent, total), nil), req.Filename)
	}

	if err := c.awaitReply(conn, msgDone); err != nil {
		return c.fail(ctx, req, err)
	}
	req.logf("Reader confirmed %s (%d bytes)", req.Filename, total)

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return nil
}

func (c *Client) writeMessage(conn *websocket.Conn, messageType int, data []byte) error {
	if c.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.WriteTimeout))
	}
	return conn.WriteMessage(messageType, data)
}

// awaitReply reads text messages until want arrives. PROGRESS messages are
// skipped; ERROR:<reason> becomes a rejection.
func (c *Client) awaitReply(conn *websocket.Conn, want string) error {
	for {
		if c.AckTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.AckTimeout))
		}
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if messageType != websocket.TextMessage {
			continue
		}

		msg := strings.TrimSpace(string(data))
		head, rest, _ := strings.Cut(msg, ":")
		switch head {
		case want:
			return nil
		case msgProgress:
			continue
		case msgError:
			return NewRejectedError(rest)
		default:
			return NewProtocolError(fmt.Sprintf("expected %s, got %q", want, msg))
		}
	}
}

func (c *Client) fail(ctx context.Context, req Request, err error) error {
	var te *Error
	if errors.As(err, &te) {
		te.Host = req.Host
		return withFile(te, req.Filename)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return withFile(&Error{
			Type:      ErrTypeTimeout,
			Message:   "transfer cancelled",
			Err:       ctxErr,
			Host:      req.Host,
			Retryable: true,
		}, req.Filename)
	}
	return withFile(NewNetworkError("transfer failed", req.Host, err), req.Filename)
}

func withFile(e *Error, filename string) *Error {
	e.Filename = filename
	return e
}
