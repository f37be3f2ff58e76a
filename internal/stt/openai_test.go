package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedUpload struct {
	model    string
	filename string
	data     string
}

func newWhisperServer(t *testing.T, status int, body string) (*httptest.Server, *capturedUpload) {
	t.Helper()
	got := &capturedUpload{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			got.model = r.FormValue("model")
			if f, hdr, err := r.FormFile("file"); err == nil {
				got.filename = hdr.Filename
				b, _ := io.ReadAll(f)
				got.data = string(b)
				f.Close()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestOpenAITranscribe(t *testing.T) {
	srv, got := newWhisperServer(t, http.StatusOK, `{"text": "hello from the podcast"}`)

	p := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	resp, err := p.Transcribe(context.Background(), Request{
		Audio:    strings.NewReader("ID3 fake audio"),
		FileName: "episode.mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello from the podcast", resp.Text)

	assert.Equal(t, "whisper-1", got.model)
	assert.Equal(t, "episode.mp3", got.filename)
	assert.Equal(t, "ID3 fake audio", got.data)
}

func TestOpenAITranscribeErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "payload too large with API error body",
			status:      http.StatusRequestEntityTooLarge,
			body:        `{"error": {"message": "Maximum content size limit (26214400) exceeded", "type": "invalid_request_error"}}`,
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantMessage: "Maximum content size limit (26214400) exceeded",
		},
		{
			name:       "payload too large from a proxy",
			status:     http.StatusRequestEntityTooLarge,
			body:       `<html>413 Request Entity Too Large</html>`,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:        "bad gateway with html body",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantStatus:  http.StatusBadGateway,
			wantMessage: "error, status code: 502, status: 502 Bad Gateway",
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Incorrect API key provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newWhisperServer(t, tt.status, tt.body)
			p := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})

			_, err := p.Transcribe(context.Background(), Request{Audio: strings.NewReader("x"), FileName: "a.mp3"})
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, StatusCode(err))
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, Message(err))
			}
			assert.NotContains(t, Message(err), "<html>")
			assert.NotContains(t, Message(err), "transcription request")
		})
	}
}

func TestTranscribeRequiresAudio(t *testing.T) {
	p := NewOpenAI(OpenAIConfig{})
	_, err := p.Transcribe(context.Background(), Request{FileName: "a.mp3"})
	assert.Error(t, err)
}

func TestStatusCodeOfPlainError(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	assert.Equal(t, 0, StatusCode(err))
	assert.Equal(t, "dial tcp: connection refused", Message(err))
	assert.Equal(t, "", Message(nil))
}

func TestLocalUsesCompatibleRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		fmt.Fprint(w, `{"text": "local"}`)
	}))
	defer srv.Close()

	p := NewLocal(LocalConfig{BaseURL: srv.URL})
	assert.Equal(t, "local-whisper", p.Name())
	resp, err := p.Transcribe(context.Background(), Request{Audio: strings.NewReader("x"), FileName: "a.wav"})
	require.NoError(t, err)
	assert.Equal(t, "local", resp.Text)
}

func TestMessageDropsRequestPrefix(t *testing.T) {
	err := fmt.Errorf("%s%w", requestPrefix, errors.New("dial tcp: connection refused"))
	assert.Equal(t, "dial tcp: connection refused", Message(err))
}
