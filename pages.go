package policydesk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type pageFrontMatter struct {
	Title   string `yaml:"title"`
	Updated string `yaml:"updated"`
}

// Pages holds the static legal and informational pages. Built-in pages
// are overridden by same-named markdown files in the pages directory.
type Pages struct {
	mu    sync.RWMutex
	pages map[string]StaticPage
	dir   string
	log   *zap.Logger
}

// NewPages loads built-in pages and the markdown files in dir.
// A missing dir only leaves the built-in pages.
func NewPages(dir string, log *zap.Logger) (*Pages, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pages{dir: dir, log: log}
	if err := p.Load(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load rereads every page and swaps the set atomically.
func (p *Pages) Load() error {
	pages := make(map[string]StaticPage)

	builtin, err := fs.Sub(EmbeddedAssets, "embedded/pages")
	if err != nil {
		return err
	}
	if err := readPages(builtin, pages); err != nil {
		return fmt.Errorf("policydesk: built-in pages: %w", err)
	}
	if p.dir != "" {
		if _, err := os.Stat(p.dir); err == nil {
			if err := readPages(os.DirFS(p.dir), pages); err != nil {
				return fmt.Errorf("policydesk: pages dir %s: %w", p.dir, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	p.mu.Lock()
	p.pages = pages
	p.mu.Unlock()
	return nil
}

func readPages(fsys fs.FS, into map[string]StaticPage) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return err
		}
		page, err := ParsePage(strings.TrimSuffix(e.Name(), ".md"), data)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		into[page.Name] = page
	}
	return nil
}

// ParsePage reads a markdown page with optional YAML front matter
// delimited by "---" lines.
func ParsePage(name string, data []byte) (StaticPage, error) {
	page := StaticPage{Name: name, Title: name}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	body := data
	if bytes.HasPrefix(data, []byte("---\n")) || bytes.HasPrefix(data, []byte("---\r\n")) {
		rest := data[bytes.IndexByte(data, '\n')+1:]
		end := bytes.Index(rest, []byte("\n---"))
		if end < 0 {
			return StaticPage{}, errors.New("unterminated front matter")
		}
		var fm pageFrontMatter
		if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
			return StaticPage{}, fmt.Errorf("front matter: %w", err)
		}
		if fm.Title != "" {
			page.Title = fm.Title
		}
		page.Updated = fm.Updated
		body = rest[end+len("\n---"):]
		if i := bytes.IndexByte(body, '\n'); i >= 0 {
			body = body[i+1:]
		} else {
			body = nil
		}
	}
	page.Body = strings.TrimSpace(string(body))
	return page, nil
}

// Get returns the page called name.
func (p *Pages) Get(name string) (StaticPage, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	page, ok := p.pages[name]
	if !ok {
		return StaticPage{}, ErrNotFound
	}
	return page, nil
}

// List returns all pages sorted by name.
func (p *Pages) List() []StaticPage {
	p.mu.RLock()
	out := make([]StaticPage, 0, len(p.pages))
	for _, page := range p.pages {
		out = append(out, page)
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Watch reloads pages when files in the pages directory change, until ctx
// is done. Reloads are debounced.
func (p *Pages) Watch(ctx context.Context) error {
	if p.dir == "" {
		<-ctx.Done()
		return nil
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(p.dir); err != nil {
		return err
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(200 * time.Millisecond)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("pages watcher", zap.Error(err))
		case <-debounce.C:
			if err := p.Load(); err != nil {
				p.log.Error("reload pages", zap.Error(err))
				continue
			}
			p.log.Info("pages reloaded", zap.Int("count", len(p.List())))
		}
	}
}
