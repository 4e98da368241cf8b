// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig 壓縮等級與門檻；每組設定各自持有 encoder pool。
//
// MinSize 以下的回應（單次 roll / buff 結果）直接原樣送出，壓縮只留給 sim 報表這類大 body。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
	MinSize   int
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
	MinSize:   512,
}

// gzip.Writer 與 zstd.Encoder 共同的方法集
type encoder interface {
	io.WriteCloser
	Flush() error
	Reset(io.Writer)
}

type compressor struct {
	cfg   CompressConfig
	pools map[string]*sync.Pool
}

func newCompressor(cfg CompressConfig) *compressor {
	c := &compressor{cfg: cfg, pools: map[string]*sync.Pool{}}
	c.pools["zstd"] = &sync.Pool{New: func() any {
		zw, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(cfg.ZstdLevel), zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil
		}
		return zw
	}}
	c.pools["gzip"] = &sync.Pool{New: func() any {
		gw, err := gzip.NewWriterLevel(nil, cfg.GzipLevel)
		if err != nil {
			return nil
		}
		return gw
	}}
	return c
}

// negotiate 依 Accept-Encoding 選 zstd 或 gzip，都不支援回傳空字串。
func negotiate(r *http.Request) string {
	if r.Method == http.MethodHead {
		return ""
	}
	if strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") || r.Header.Get("Upgrade") != "" {
		return ""
	}
	ae := r.Header.Get("Accept-Encoding")
	switch {
	case strings.Contains(ae, "zstd"):
		return "zstd"
	case strings.Contains(ae, "gzip"):
		return "gzip"
	}
	return ""
}

func (c *compressor) get(enc string, w io.Writer) encoder {
	e, _ := c.pools[enc].Get().(encoder)
	if e != nil {
		e.Reset(w)
	}
	return e
}

func (c *compressor) put(enc string, e encoder) {
	c.pools[enc].Put(e)
}

// compressWriter 先緩衝到 MinSize 才決定是否壓縮；status 也延後到決定時才送出。
type compressWriter struct {
	http.ResponseWriter
	c      *compressor
	enc    string
	buf    []byte
	status int
	sent   bool // header 已送出
	raw    bool // 決定不壓縮
	ew     encoder
}

func (cw *compressWriter) WriteHeader(code int) {
	if cw.sent || cw.status != 0 {
		return
	}
	cw.status = code
	// 1xx / 204 / 304 不帶 body
	if (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified {
		cw.raw = true
		cw.sendHeader()
	}
}

func (cw *compressWriter) sendHeader() {
	if cw.sent {
		return
	}
	cw.sent = true
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	cw.ResponseWriter.WriteHeader(cw.status)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	switch {
	case cw.ew != nil:
		return cw.ew.Write(b)
	case cw.raw:
		cw.sendHeader()
		return cw.ResponseWriter.Write(b)
	}
	cw.buf = append(cw.buf, b...)
	if len(cw.buf) >= cw.c.cfg.MinSize {
		if err := cw.start(); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

// start 決定壓縮：補上 header、取 encoder 並寫出目前緩衝。
// Content-Encoding 已被 handler 設定或取不到 encoder 時改走原樣輸出。
func (cw *compressWriter) start() error {
	h := cw.Header()
	if h.Get("Content-Type") == "" && len(cw.buf) > 0 {
		h.Set("Content-Type", http.DetectContentType(cw.buf))
	}
	if h.Get("Content-Encoding") == "" {
		cw.ew = cw.c.get(cw.enc, cw.ResponseWriter)
	}
	if cw.ew == nil {
		return cw.flushRaw()
	}
	h.Del("Content-Length")
	h.Set("Content-Encoding", cw.enc)
	cw.sendHeader()
	buf := cw.buf
	cw.buf = nil
	_, err := cw.ew.Write(buf)
	return err
}

func (cw *compressWriter) flushRaw() error {
	cw.raw = true
	if cw.Header().Get("Content-Type") == "" && len(cw.buf) > 0 {
		cw.Header().Set("Content-Type", http.DetectContentType(cw.buf))
	}
	cw.sendHeader()
	buf := cw.buf
	cw.buf = nil
	if len(buf) == 0 {
		return nil
	}
	_, err := cw.ResponseWriter.Write(buf)
	return err
}

// finish 在 handler 返回後收尾：未達門檻的緩衝原樣送出，encoder 寫 footer 後歸還。
func (cw *compressWriter) finish() {
	if cw.ew == nil {
		_ = cw.flushRaw()
		return
	}
	_ = cw.ew.Close()
	cw.ew.Reset(io.Discard)
	cw.c.put(cw.enc, cw.ew)
	cw.ew = nil
}

func (cw *compressWriter) Flush() {
	if cw.ew == nil && !cw.raw && len(cw.buf) > 0 {
		_ = cw.start()
	}
	if cw.ew != nil {
		_ = cw.ew.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

// Compression 以 DefaultCompressConfig 壓縮回應（zstd 優先，其次 gzip）。
var Compression = NewCompression(DefaultCompressConfig)

// NewCompression HEAD、WebSocket 與 Accept-Encoding 不支援的請求不處理。
func NewCompression(cfg CompressConfig) func(http.Handler) http.Handler {
	c := newCompressor(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			enc := negotiate(r)
			if enc == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Accept-Encoding")
			cw := &compressWriter{ResponseWriter: w, c: c, enc: enc}
			// 不用 defer：panic 時丟棄緩衝，交給 Recover 寫 500
			next.ServeHTTP(cw, r)
			cw.finish()
		})
	}
}
