package mirrorfs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/aweris/mirrorfs/internal/compression"
)

// probe is the resolved disk state of one candidate name at stat time.
type probe struct {
	path    string
	present bool
	regular bool
}

// outcome is the single result of running the pipeline for one name:
// readable content, the no-content sentinel (content nil, err nil), or an
// error. Never more than one.
type outcome struct {
	name    string
	content *Content
	err     error
}

// pipeline turns a candidate name into an outcome: stat the path, read it
// when it is a regular file, decode it when the JSON policy says so.
//
// Watcher notifications race with the filesystem, so a path that vanished or
// stopped being a plain file between notification and probe is a normal
// no-content outcome, not a fault. Malformed JSON is a fault.
type pipeline struct {
	fsys FileSystem
	dir  string

	jsonOn  *atomic.Bool
	jsonExt string

	codec *compression.Codec
}

func (p *pipeline) run(name string) outcome {
	pr, err := p.probeName(name)
	if err != nil {
		return outcome{name: name, err: fmt.Errorf("probe %s: %w", name, err)}
	}
	if !pr.present || !pr.regular {
		return outcome{name: name}
	}

	raw, err := p.fsys.ReadFile(pr.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Vanished between probe and read.
			return outcome{name: name}
		}
		return outcome{name: name, err: fmt.Errorf("read %s: %w", name, err)}
	}

	value, err := p.decode(name, raw)
	if err != nil {
		return outcome{name: name, err: fmt.Errorf("decode %s: %w", name, err)}
	}

	return outcome{name: name, content: newContent(raw, value, p.codec)}
}

func (p *pipeline) probeName(name string) (probe, error) {
	path := filepath.Join(p.dir, name)
	info, err := p.fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return probe{path: path}, nil
		}
		return probe{}, err
	}
	return probe{path: path, present: true, regular: info.Mode().IsRegular()}, nil
}

func (p *pipeline) decode(name string, raw []byte) (any, error) {
	if !p.jsonOn.Load() || !strings.EqualFold(filepath.Ext(name), p.jsonExt) {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return value, nil
}
