package index

import (
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Raphcal/localserver/pkg/logging"
	"github.com/Raphcal/localserver/pkg/message"
	"github.com/Raphcal/localserver/pkg/servlet"
)

// DefaultContentType is sent for files whose extension is unknown.
const DefaultContentType = "application/octet-stream"

var (
	// ErrNotDirectory is returned by New when the root is not a directory.
	ErrNotDirectory = errors.New("server root is not a directory")

	// ErrInvalidPattern is returned by New for a malformed exclusion glob.
	ErrInvalidPattern = errors.New("invalid exclusion pattern")
)

// Servlet answers GET requests with files and directory listings.
type Servlet struct {
	root    string
	exclude []string
	log     *slog.Logger
	methods servlet.Servlet
}

// Option configures a Servlet.
type Option func(*Servlet)

// WithExclude hides every entry matching one of patterns.
func WithExclude(patterns ...string) Option {
	return func(s *Servlet) {
		s.exclude = append(s.exclude, patterns...)
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Servlet) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a servlet serving root.
func New(root string, opts ...Option) (*Servlet, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving server root: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving server root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving server root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	s := &Servlet{root: abs, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	for _, pattern := range s.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
	}
	s.methods.Get = s.serveGet
	return s, nil
}

// Root returns the absolute directory being served.
func (s *Servlet) Root() string {
	return s.root
}

// HandleRequest implements servlet.Handler.
func (s *Servlet) HandleRequest(req *message.Request, resp *message.Response) error {
	return s.methods.HandleRequest(req, resp)
}

func (s *Servlet) serveGet(req *message.Request, resp *message.Response) error {
	rel, err := requestPath(req.Target())
	if err != nil {
		resp.SetStatus(message.StatusBadRequest, message.StatusMessageBadRequest)
		resp.SetContent("Given path is unsupported: " + req.Target())
		return nil
	}

	if s.excluded(rel) {
		notFound(resp)
		return nil
	}
	file, info, ok := s.resolve(rel)
	if !ok {
		notFound(resp)
		return nil
	}

	resp.SetStatus(message.StatusOK, message.StatusMessageOK)
	if info.IsDir() {
		return s.serveDirectory(resp, rel, file)
	}
	return serveFile(resp, file)
}

// requestPath reduces a target to a clean slash-separated path starting
// with "/". Absolute URIs keep only their path; queries are dropped.
func requestPath(target string) (string, error) {
	p := target
	if strings.Contains(target, "://") {
		u, err := url.Parse(target)
		if err != nil {
			return "", err
		}
		p = u.Path
	} else {
		p, _, _ = strings.Cut(p, "?")
		unescaped, err := url.PathUnescape(p)
		if err != nil {
			return "", err
		}
		p = unescaped
	}
	return path.Clean("/" + p), nil
}

// resolve maps rel to a file under the root. Symbolic links leading
// outside the root are rejected.
func (s *Servlet) resolve(rel string) (string, fs.FileInfo, bool) {
	file := filepath.Join(s.root, filepath.FromSlash(rel))
	resolved, err := filepath.EvalSymlinks(file)
	if err != nil {
		return "", nil, false
	}
	if resolved != s.root && !strings.HasPrefix(resolved, s.root+string(filepath.Separator)) {
		s.log.Debug("path escapes server root", "path", rel)
		return "", nil, false
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, false
	}
	return resolved, info, true
}

// excluded reports whether rel or one of its parent directories matches an
// exclusion pattern.
func (s *Servlet) excluded(rel string) bool {
	if len(s.exclude) == 0 || rel == "/" {
		return false
	}
	p := strings.TrimPrefix(rel, "/")
	for p != "." && p != "" {
		for _, pattern := range s.exclude {
			if ok, _ := doublestar.Match(pattern, p); ok {
				return true
			}
		}
		p = path.Dir(p)
	}
	return false
}

func (s *Servlet) serveDirectory(resp *message.Response, rel, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", rel, err)
	}

	var sb strings.Builder
	sb.WriteString("<html><head><title>")
	sb.WriteString(html.EscapeString(path.Base(rel)))
	sb.WriteString("</title></head><body><h1>Index of ")
	sb.WriteString(html.EscapeString(rel))
	sb.WriteString("</h1><hr/><pre>")
	if rel != "/" {
		writeLink(&sb, path.Dir(rel), "../")
	}
	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		if s.excluded(childRel) {
			continue
		}
		name := entry.Name()
		if isDir(dir, entry) {
			name += "/"
		}
		writeLink(&sb, childRel, name)
	}
	sb.WriteString("</pre></body></html>")

	resp.SetContentType(message.ContentTypeHTML)
	resp.SetCharset(message.UTF8)
	resp.SetContent(sb.String())
	return nil
}

func isDir(dir string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}

func writeLink(sb *strings.Builder, href, label string) {
	u := url.URL{Path: href}
	sb.WriteString(`<a href="`)
	sb.WriteString(html.EscapeString(u.EscapedPath()))
	sb.WriteString(`">`)
	sb.WriteString(html.EscapeString(label))
	sb.WriteString("</a>\n")
}

func serveFile(resp *message.Response, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(file), err)
	}
	resp.SetHeader(message.HeaderContentType, ContentTypeFor(file))
	resp.SetContentBytes(data, true)
	return nil
}

// ContentTypeFor returns the MIME type registered for the extension of
// name, or DefaultContentType.
func ContentTypeFor(name string) string {
	if ext := filepath.Ext(name); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return DefaultContentType
}

func notFound(resp *message.Response) {
	resp.SetStatus(message.StatusNotFound, message.StatusMessageNotFound)
}
