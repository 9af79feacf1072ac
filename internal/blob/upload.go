package blob

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// ProgressFunc receives the fraction of bytes sent, in [0, 1].
type ProgressFunc func(fraction float64)

// UploadedFile describes a completed transfer.
type UploadedFile struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	Size     int64  `json:"contentLength"`
}

// Uploader sends files to upload targets issued by a Broker.
type Uploader struct {
	httpClient *http.Client
}

func NewUploader(httpClient *http.Client) *Uploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Uploader{httpClient: httpClient}
}

// UploadFile transfers the file at path to target under fileName. progress
// may be nil.
func (u *Uploader) UploadFile(ctx context.Context, target *UploadTarget, path, fileName, contentType string, progress ProgressFunc) (*UploadedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	sum, err := fileSHA1(f)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	body := &progressReader{r: f, total: stat.Size(), fn: progress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.UploadURL, body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = stat.Size()
	req.Header.Set("Authorization", target.AuthorizationToken)
	req.Header.Set("X-Bz-File-Name", url.PathEscape(fileName))
	req.Header.Set("X-Bz-Content-Sha1", sum)
	if contentType == "" {
		contentType = "b2/x-auto"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", fileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var uploaded UploadedFile
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, err
	}
	if uploaded.Size == 0 {
		uploaded.Size = stat.Size()
	}
	body.finish()
	return &uploaded, nil
}

func fileSHA1(r io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type progressReader struct {
	r     io.Reader
	total int64
	fn    ProgressFunc

	mu   sync.Mutex
	sent int64
	last float64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.sent += int64(n)
		p.report(false)
		p.mu.Unlock()
	}
	return n, err
}

func (p *progressReader) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = p.total
	p.report(true)
}

// report emits at most one event per whole percent.
func (p *progressReader) report(force bool) {
	if p.fn == nil {
		return
	}
	fraction := 1.0
	if p.total > 0 {
		fraction = float64(p.sent) / float64(p.total)
	}
	if fraction > 1 {
		fraction = 1
	}
	if !force && fraction-p.last < 0.01 && fraction < 1 {
		return
	}
	if force && p.last >= 1 {
		return
	}
	p.last = fraction
	p.fn(fraction)
}
