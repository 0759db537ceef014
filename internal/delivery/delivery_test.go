package delivery

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/clipferry/clipferry/internal/status"
)

// fakeMedia serves a fixed number of zero bytes as its stream.
type fakeMedia struct {
	id       string
	title    string
	duration int
	size     int64
	openErr  error
	readErr  error // returned once size bytes have been served

	opened  int
	flavors []StreamFlavor
}

func (m *fakeMedia) SourceID() string     { return m.id }
func (m *fakeMedia) DisplayTitle() string { return m.title }
func (m *fakeMedia) DurationSeconds() int { return m.duration }

func (m *fakeMedia) OpenStream(_ context.Context, flavor StreamFlavor) (io.ReadCloser, int64, error) {
	m.opened++
	m.flavors = append(m.flavors, flavor)
	if m.openErr != nil {
		return nil, 0, m.openErr
	}
	return &fakeStream{remaining: m.size, errAtEnd: m.readErr}, m.size, nil
}

type fakeStream struct {
	remaining int64
	errAtEnd  error
	closed    bool
}

func (s *fakeStream) Read(p []byte) (int, error) {
	if s.remaining <= 0 {
		if s.errAtEnd != nil {
			return 0, s.errAtEnd
		}
		return 0, io.EOF
	}
	n := int64(len(p))
	if n > s.remaining {
		n = s.remaining
	}
	for i := int64(0); i < n; i++ {
		p[i] = 0
	}
	s.remaining -= n
	return int(n), nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type sentVideo struct {
	chatID   int64
	path     string
	filename string
	opt      VideoOptions
	streamed bool
	read     int64
}

// fakeSender records uploads; the stream variant drains the reader like
// the real transport would.
type fakeSender struct {
	streamErr error
	fileErr   error
	onFile    func(path string)

	sent []sentVideo
}

func (s *fakeSender) SendVideoStream(chatID int64, filename string, r io.Reader, opt VideoOptions) error {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return err
	}
	if s.streamErr != nil {
		return s.streamErr
	}
	s.sent = append(s.sent, sentVideo{chatID: chatID, filename: filename, opt: opt, streamed: true, read: n})
	return nil
}

func (s *fakeSender) SendVideoFile(chatID int64, path string, opt VideoOptions) error {
	if s.onFile != nil {
		s.onFile(path)
	}
	if s.fileErr != nil {
		return s.fileErr
	}
	s.sent = append(s.sent, sentVideo{chatID: chatID, path: path, opt: opt})
	return nil
}

// fakeMessenger backs a status.Reporter in tests.
type fakeMessenger struct {
	texts   []string
	deleted bool
}

func (m *fakeMessenger) SendMessage(chatID int64, text string) (status.MessageRef, error) {
	m.texts = append(m.texts, text)
	return 1, nil
}

func (m *fakeMessenger) EditMessage(chatID int64, ref status.MessageRef, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) DeleteMessage(chatID int64, ref status.MessageRef) error {
	m.deleted = true
	return nil
}

func newTestReporter(m *fakeMessenger) *status.Reporter {
	r := status.NewReporter(m, zap.NewNop(), 1)
	r.Begin("fetching video info…")
	return r
}

var errBoom = errors.New("boom")
