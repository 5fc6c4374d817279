package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"

	"github.com/MimeLyc/latepost/pkg/file"
	"github.com/MimeLyc/latepost/pkg/log"
)

var (
	ErrDirNotFound = errors.New("video directory not found")
	ErrEmptyPool   = errors.New("no videos found")
)

// sniffLen covers every signature filetype knows about.
const sniffLen = 262

type scannerOptions struct {
	sniff bool
}

type Option func(*scannerOptions)

// WithSniffing toggles content signature checks. Enabled by default.
func WithSniffing(enabled bool) Option {
	return func(o *scannerOptions) {
		o.sniff = enabled
	}
}

type Scanner struct {
	dir   string
	sniff bool
}

func NewScanner(dir string, opts ...Option) *Scanner {
	options := scannerOptions{sniff: true}
	for _, opt := range opts {
		opt(&options)
	}
	return &Scanner{
		dir:   dir,
		sniff: options.sniff,
	}
}

// Scan loads the pool: regular files in dir with a video extension, sorted
// by name. Files whose signature is recognized as a non-video type are
// dropped; unrecognized content is kept.
func (s *Scanner) Scan(ctx context.Context) (*Pool, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, s.dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirNotFound, s.dir)
	}

	paths, err := file.FindByExt(s.dir, VideoExts)
	if err != nil {
		return nil, err
	}

	pool := &Pool{
		Dir:    s.dir,
		Videos: make([]Video, 0, len(paths)),
	}
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fi, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if s.sniff {
			detected, err := detectNonVideo(path)
			if err != nil {
				return nil, err
			}
			if detected != "" {
				log.Warn("Skipping %s: content looks like %s", filepath.Base(path), detected)
				pool.Rejected = append(pool.Rejected, Rejected{Path: path, Detected: detected})
				continue
			}
		}

		pool.Videos = append(pool.Videos, Video{
			Path: path,
			Name: filepath.Base(path),
			Size: fi.Size(),
		})
	}

	if len(pool.Videos) == 0 {
		return pool, fmt.Errorf("%w in %s", ErrEmptyPool, s.dir)
	}
	return pool, nil
}

// detectNonVideo returns the detected MIME type when the header matches a
// known signature that is not a video, or "" otherwise.
func detectNonVideo(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}

	kind, err := filetype.Match(buf[:n])
	if err != nil || kind == filetype.Unknown {
		return "", nil
	}
	if kind.MIME.Type == "video" {
		return "", nil
	}
	return kind.MIME.Value, nil
}
