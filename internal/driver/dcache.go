package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/snappy"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"

	"abiforge/internal/diag"
	"abiforge/internal/observ"
	"abiforge/internal/project"
	"abiforge/internal/source"
	"abiforge/internal/version"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 2

// memoryEntries bounds the in-process front of the disk cache.
const memoryEntries = 256

// maxEntryBytes rejects corrupt entries before snappy allocates for them.
const maxEntryBytes = 64 << 20

// DiskCache хранит результаты сборки юнитов по хешу входа и настроек.
// Entries are msgpack encoded and snappy compressed; recently used ones
// are also kept in memory. Thread-safe for concurrent access.
type DiskCache struct {
	mu     sync.RWMutex
	dir    string
	memory *lru.Cache[project.Digest, *DiskPayload]
}

// DiskPayload is a cached unit build: its artifacts, routes and
// diagnostics. Spans are stored as paths so they survive without the
// declaration tree.
type DiskPayload struct {
	Schema      uint16           `msgpack:"schema"`
	Unit        string           `msgpack:"unit"`
	Artifacts   []cachedArtifact `msgpack:"artifacts"`
	Routes      []RouteSummary   `msgpack:"routes"`
	Diagnostics []cachedDiag     `msgpack:"diagnostics"`
	Timing      observ.Report    `msgpack:"timing"`
}

type cachedArtifact struct {
	Name string `msgpack:"name"`
	Data []byte `msgpack:"data"`
}

type cachedDiag struct {
	Severity uint8  `msgpack:"sev"`
	Code     uint16 `msgpack:"code"`
	Message  string `msgpack:"msg"`
	Path     string `msgpack:"path,omitempty"`
	Line     uint32 `msgpack:"line,omitempty"`
	Col      uint32 `msgpack:"col,omitempty"`
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	memory, err := lru.New[project.Digest, *DiskPayload](memoryEntries)
	if err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir, memory: memory}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "units", hexKey+".mp.sz")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	data := snappy.Encode(nil, raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err = os.Rename(tmp, p); err != nil {
		return err
	}
	c.memory.Add(key, payload)
	return nil
}

// Get reads and deserializes a payload from the disk cache. Entries written
// under another schema are reported as misses.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	if hit, ok := c.memory.Get(key); ok {
		*out = *hit
		return true, nil
	}

	c.mu.RLock()
	data, err := os.ReadFile(c.pathFor(key))
	c.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	raw, err := decompressEntry(data)
	if err != nil {
		return false, err
	}
	if err := msgpack.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	stored := *out
	c.memory.Add(key, &stored)
	return true, nil
}

func decompressEntry(data []byte) ([]byte, error) {
	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	if n > maxEntryBytes {
		return nil, fmt.Errorf("cache entry too large: %d > %d", n, maxEntryBytes)
	}
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return raw, nil
}

// Len reports how many entries are held in memory.
func (c *DiskCache) Len() int {
	if c == nil {
		return 0
	}
	return c.memory.Len()
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory.Purge()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey binds an input blob to everything that shapes the output.
func cacheKey(input []byte, opts Options) (project.Digest, error) {
	settings, err := msgpack.Marshal(struct {
		Dispatch       any
		Manifest       any
		IncludeLibrary bool
		AbiFile        string
		Fragments      bool
		Declarations   bool
		UnitDirs       bool
		Version        string
	}{
		opts.Dispatch, opts.Manifest, opts.IncludeLibrary, opts.AbiFile,
		opts.Fragments, opts.Declarations, opts.UnitDirs, version.Version,
	})
	if err != nil {
		return project.Digest{}, fmt.Errorf("encode cache key: %w", err)
	}
	return project.Combine(project.HashBytes(input), project.HashBytes(settings)), nil
}

func resultToPayload(res *Result) *DiskPayload {
	p := &DiskPayload{
		Schema: diskCacheSchemaVersion,
		Unit:   res.Unit,
		Routes: res.Routes,
		Timing: res.Timing,
	}
	for _, a := range res.Artifacts {
		p.Artifacts = append(p.Artifacts, cachedArtifact(a))
	}
	files := res.Files
	for _, d := range res.Bag.Items() {
		p.Diagnostics = append(p.Diagnostics, cachedDiag{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Path:     files.Path(d.Primary.File),
			Line:     d.Primary.Line,
			Col:      d.Primary.Col,
		})
	}
	return p
}

// payloadToResult rebuilds a Result. Diagnostic spans point into a fresh
// path table.
func payloadToResult(p *DiskPayload) *Result {
	files := source.NewFiles()
	res := &Result{
		Unit:   p.Unit,
		Files:  files,
		Routes: p.Routes,
		Bag:    diag.NewBag(0),
		Timing: p.Timing,
		Cached: true,
	}
	for _, a := range p.Artifacts {
		res.Artifacts = append(res.Artifacts, Artifact(a))
	}
	for _, d := range p.Diagnostics {
		res.Bag.Add(diag.Diagnostic{
			Severity: diag.Severity(d.Severity),
			Code:     diag.Code(d.Code),
			Message:  d.Message,
			Primary:  source.Span{File: files.Add(d.Path), Line: d.Line, Col: d.Col},
		})
	}
	return res
}
