package azdo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client, err := NewClient(ts.URL, "test-pat", "7.1", false, nil)
	require.NoError(t, err)
	return client
}

func TestChunkRanges_Partitioning(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		chunkSize int
		want      int
	}{
		{"exact multiple", 8, 4, 2},
		{"short last chunk", 10, 4, 3},
		{"single chunk", 3, 4, 1},
		{"one byte", 1, 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranges := chunkRanges(tt.total, tt.chunkSize)
			require.Len(t, ranges, tt.want)

			// Covers [0, total) exactly once: starts at 0, each range
			// begins where the previous ended, last end is total-1.
			assert.Equal(t, int64(0), ranges[0].Start)
			for i := 1; i < len(ranges); i++ {
				assert.Equal(t, ranges[i-1].End+1, ranges[i].Start)
			}
			assert.Equal(t, tt.total-1, ranges[len(ranges)-1].End)
			for _, r := range ranges {
				assert.LessOrEqual(t, r.End-r.Start+1, int64(tt.chunkSize))
			}
		})
	}
}

func TestChunkRanges_Degenerate(t *testing.T) {
	assert.Nil(t, chunkRanges(0, 4))
	assert.Nil(t, chunkRanges(10, 0))
}

func TestUploadSequencer_SingleShot(t *testing.T) {
	var uploads, chunkInits, patches int
	mux := http.NewServeMux()
	mux.HandleFunc("/Fabrikam/_apis/wit/attachments", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("uploadType") == "chunked" {
			chunkInits++
		} else {
			uploads++
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "hello attachment", string(body))
			assert.Equal(t, "notes.txt", r.URL.Query().Get("fileName"))
		}
		_ = json.NewEncoder(w).Encode(AttachmentRef{ID: "att-1", URL: "http://example/att-1"})
	})
	mux.HandleFunc("/Fabrikam/_apis/wit/workitems/7", func(w http.ResponseWriter, r *http.Request) {
		patches++
		assert.Equal(t, http.MethodPatch, r.Method)
		var patch []PatchOp
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		require.Len(t, patch, 1)
		assert.Equal(t, "add", patch[0].Op)
		assert.Equal(t, "/relations/-", patch[0].Path)
		_ = json.NewEncoder(w).Encode(WorkItem{ID: 7})
	})

	client := newTestClient(t, mux)
	seq := NewUploadSequencer(client)
	result, err := seq.Run(context.Background(), UploadParams{
		Project:    "Fabrikam",
		WorkItemID: 7,
		FileName:   "notes.txt",
		Data:       []byte("hello attachment"),
		Comment:    "see notes",
		Threshold:  1024,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, uploads, "exactly one upload request")
	assert.Equal(t, 0, chunkInits, "no chunked initiate below threshold")
	assert.Equal(t, 1, patches, "one relation patch")
	assert.Equal(t, "att-1", result.AttachmentID)
	assert.False(t, result.Chunked)
	assert.Equal(t, "done", seq.State())
}

func TestUploadSequencer_Chunked(t *testing.T) {
	payload := make([]byte, 10)
	for i := range payload {
		payload[i] = byte('a' + i)
	}

	var initiated bool
	var ranges []string
	var received []byte
	mux := http.NewServeMux()
	mux.HandleFunc("/P/_apis/wit/attachments", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "chunked", r.URL.Query().Get("uploadType"))
		initiated = true
		_ = json.NewEncoder(w).Encode(AttachmentRef{ID: "att-9"})
	})
	mux.HandleFunc("/P/_apis/wit/attachments/att-9", func(w http.ResponseWriter, r *http.Request) {
		require.True(t, initiated, "chunk before initiate")
		require.Equal(t, http.MethodPut, r.Method)
		ranges = append(ranges, r.Header.Get("Content-Range"))
		body, _ := io.ReadAll(r.Body)
		received = append(received, body...)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	})
	mux.HandleFunc("/P/_apis/wit/workitems/3", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(WorkItem{ID: 3})
	})

	client := newTestClient(t, mux)
	seq := NewUploadSequencer(client)
	result, err := seq.Run(context.Background(), UploadParams{
		Project:    "P",
		WorkItemID: 3,
		FileName:   "big.bin",
		Data:       payload,
		ChunkSize:  4,
		Threshold:  8,
	})
	require.NoError(t, err)

	// 10 bytes in 4-byte chunks: 0-3, 4-7, 8-9.
	assert.Equal(t, []string{
		"bytes 0-3/10",
		"bytes 4-7/10",
		"bytes 8-9/10",
	}, ranges)
	assert.Equal(t, payload, received, "chunks reassemble the payload")
	assert.True(t, result.Chunked)
	assert.Equal(t, 3, result.Chunks)
	assert.Contains(t, result.URL, "att-9")
	assert.Contains(t, result.URL, "fileName=big.bin")
}

func TestUploadSequencer_ChunkFailureAborts(t *testing.T) {
	var chunkCalls, patches int
	mux := http.NewServeMux()
	mux.HandleFunc("/P/_apis/wit/attachments", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(AttachmentRef{ID: "att-x"})
	})
	mux.HandleFunc("/P/_apis/wit/attachments/att-x", func(w http.ResponseWriter, r *http.Request) {
		chunkCalls++
		if chunkCalls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"storage unavailable"}`)
			return
		}
		_, _ = w.Write([]byte("{}"))
	})
	mux.HandleFunc("/P/_apis/wit/workitems/3", func(w http.ResponseWriter, r *http.Request) {
		patches++
	})

	client := newTestClient(t, mux)
	seq := NewUploadSequencer(client)
	_, err := seq.Run(context.Background(), UploadParams{
		Project:    "P",
		WorkItemID: 3,
		FileName:   "big.bin",
		Data:       make([]byte, 10),
		ChunkSize:  4,
		Threshold:  8,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 2/3")
	assert.Contains(t, err.Error(), "storage unavailable")
	assert.Equal(t, 2, chunkCalls, "no chunks after the failure")
	assert.Equal(t, 0, patches, "no relation link after a failed upload")
	assert.Equal(t, "failed", seq.State())
}

func TestUploadSequencer_Validation(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	_, err := NewUploadSequencer(client).Run(context.Background(), UploadParams{
		Project: "P", WorkItemID: 1, FileName: "", Data: []byte("x"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fileName")

	_, err = NewUploadSequencer(client).Run(context.Background(), UploadParams{
		Project: "P", WorkItemID: 1, FileName: "a.txt",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestUploadSequencer_SingleUse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "attachments") {
			_ = json.NewEncoder(w).Encode(AttachmentRef{ID: "a", URL: "u"})
			return
		}
		_ = json.NewEncoder(w).Encode(WorkItem{ID: 1})
	})
	client := newTestClient(t, mux)
	seq := NewUploadSequencer(client)
	params := UploadParams{Project: "P", WorkItemID: 1, FileName: "a.txt", Data: []byte("x")}

	_, err := seq.Run(context.Background(), params)
	require.NoError(t, err)

	_, err = seq.Run(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already ran")
}
