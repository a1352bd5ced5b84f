package pipeline

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// historySchemaVersion guards against decoding a record written by an
// incompatible future BuildRecord shape.
const historySchemaVersion uint16 = 1

// BuildRecord is the per-digest build history persisted to disk: enough
// to report "last build took Nms and succeeded" without re-running the
// pipeline, and nothing more (no IR, no diagnostics — those are only
// ever held in memory for the run that produced them).
type BuildRecord struct {
	Schema     uint16
	Ok         bool
	ResolveMS  int64
	LowerMS    int64
	VerifyMS   int64
	LowIRMS    int64
	Err        string
}

// History is a disk-backed, digest-keyed store of BuildRecords.
type History struct {
	mu  sync.RWMutex
	dir string
}

// OpenHistory initializes a History rooted at dir, creating it if absent.
func OpenHistory(dir string) (*History, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &History{dir: dir}, nil
}

func (h *History) pathFor(digest Digest) string {
	return filepath.Join(h.dir, hex.EncodeToString(digest[:])+".mp")
}

// Put serializes and writes rec for digest, replacing any prior record.
func (h *History) Put(digest Digest, rec BuildRecord) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	rec.Schema = historySchemaVersion
	p := h.pathFor(digest)
	f, err := os.CreateTemp(h.dir, "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := msgpack.NewEncoder(f).Encode(&rec); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Get reads digest's record, if one was ever written.
func (h *History) Get(digest Digest) (BuildRecord, bool, error) {
	var rec BuildRecord
	if h == nil {
		return rec, false, nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	f, err := os.Open(h.pathFor(digest))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rec, false, nil
		}
		return rec, false, err
	}
	defer func() { _ = f.Close() }()

	if err := msgpack.NewDecoder(f).Decode(&rec); err != nil {
		return BuildRecord{}, false, err
	}
	if rec.Schema != historySchemaVersion {
		return BuildRecord{}, false, nil
	}
	return rec, true, nil
}

// RecordOf builds a BuildRecord from a completed Compile call.
func RecordOf(result CompileResult, err error) BuildRecord {
	rec := BuildRecord{
		Ok:        err == nil,
		ResolveMS: result.Timings.Duration(StageResolve).Milliseconds(),
		LowerMS:   result.Timings.Duration(StageLower).Milliseconds(),
		VerifyMS:  result.Timings.Duration(StageVerify).Milliseconds(),
		LowIRMS:   result.Timings.Duration(StageLowIR).Milliseconds(),
	}
	if err != nil {
		rec.Err = err.Error()
	}
	return rec
}
