package service

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	errNoFile   = errors.New("service: no file uploaded")
	errTooLarge = errors.New("service: upload exceeds size limit")
)

// upload is one file written to the request's temp directory.
type upload struct {
	path     string
	filename string
	size     int64
}

// form holds one request's parsed multipart payload. Files are streamed to
// disk under a per-request temp directory; cleanup removes the whole tree.
type form struct {
	dir    string
	files  map[string][]upload
	values map[string]string
}

// file returns the first upload for field, if any.
func (f *form) file(field string) (upload, bool) {
	ups := f.files[field]
	if len(ups) == 0 {
		return upload{}, false
	}
	return ups[0], true
}

// value returns the form value for field, or "".
func (f *form) value(field string) string {
	return f.values[field]
}

func (f *form) cleanup() {
	if f.dir != "" {
		os.RemoveAll(f.dir)
	}
}

// parseForm streams the multipart body to disk, enforcing limit on the
// cumulative file bytes. The Content-Length header short-circuits oversized
// requests before any byte is read.
func (s *Service) parseForm(r *http.Request, limit int64) (*form, error) {
	if r.ContentLength > limit {
		return nil, errTooLarge
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errNoFile
	}

	dir, err := os.MkdirTemp(s.cfg.TempDir, "docsmith-")
	if err != nil {
		return nil, err
	}
	f := &form{
		dir:    dir,
		files:  make(map[string][]upload),
		values: make(map[string]string),
	}

	var total int64
	seq := 0
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.cleanup()
			return nil, err
		}

		if part.FileName() == "" {
			// Plain form value (pages, ranges, angle, password).
			val, err := io.ReadAll(io.LimitReader(part, 1<<20))
			part.Close()
			if err != nil {
				f.cleanup()
				return nil, err
			}
			f.values[part.FormName()] = strings.TrimSpace(string(val))
			continue
		}

		seq++
		ext := filepath.Ext(part.FileName())
		dst, err := os.Create(filepath.Join(dir, "upload_"+strconv.Itoa(seq)+ext))
		if err != nil {
			part.Close()
			f.cleanup()
			return nil, err
		}
		n, err := io.Copy(dst, io.LimitReader(part, limit-total+1))
		dst.Close()
		part.Close()
		if err != nil {
			f.cleanup()
			return nil, err
		}
		total += n
		if total > limit {
			f.cleanup()
			return nil, errTooLarge
		}
		f.files[part.FormName()] = append(f.files[part.FormName()], upload{
			path:     dst.Name(),
			filename: part.FileName(),
			size:     n,
		})
	}
	return f, nil
}
