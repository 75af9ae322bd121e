package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ocrweb/internal/ocr"
	"ocrweb/internal/server/handler"
	"ocrweb/internal/server/router"
	"ocrweb/internal/server/service"
	"ocrweb/internal/task"

	"github.com/gin-gonic/gin"
)

const sampleRecognizedText = "recognized content"

type testPipeline struct{}

func (p *testPipeline) Run(ctx context.Context, pdfPath, outDir string, opts ocr.Options) error {
	pages := []ocr.PageDetections{
		{{BBox: [][]float64{{0, 0}, {10, 0}, {10, 5}, {0, 5}}, Text: sampleRecognizedText, Confidence: 0.9}},
	}
	return ocr.SaveResults(sampleRecognizedText, pages, outDir)
}

func newTestApp(t *testing.T, apiKey string) (*httptest.Server, *service.TaskService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewTaskService(task.NewMemoryStore(), &testPipeline{}, service.Config{
		ResultsDir: t.TempDir(),
		Languages:  "eng",
		Workers:    1,
	}, nil)
	h := handler.NewTaskHandler(svc, 0, nil)
	ts := httptest.NewServer(router.New(apiKey, h))
	t.Cleanup(ts.Close)
	return ts, svc
}

func TestServer_UploadPollDownloadFlow(t *testing.T) {
	ts, svc := newTestApp(t, "")

	// Upload
	resp, err := http.DefaultClient.Do(newPDFRequest(t, ts.URL+"/upload", nil))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	var accepted struct {
		TaskID string `json:"task_id"`
	}
	err = json.NewDecoder(resp.Body).Decode(&accepted)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if !task.ValidID(accepted.TaskID) {
		t.Fatalf("invalid task id: %q", accepted.TaskID)
	}

	svc.Wait()

	// Poll
	var result struct {
		Status string `json:"status"`
		Txt    string `json:"txt"`
		JSON   string `json:"json"`
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get(ts.URL + "/result/" + accepted.TaskID)
		if err != nil {
			t.Fatalf("poll failed: %v", err)
		}
		if resp.StatusCode == http.StatusOK {
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				t.Fatalf("decode result: %v", err)
			}
			resp.Body.Close()
			break
		}
		resp.Body.Close()
		if time.Now().After(deadline) {
			t.Fatalf("task never finished, last status %d", resp.StatusCode)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if result.Status != "done" || result.Txt == "" || result.JSON == "" {
		t.Fatalf("unexpected result payload: %+v", result)
	}

	// Download both artifacts
	for _, link := range []string{result.Txt, result.JSON} {
		resp, err := http.Get(ts.URL + link)
		if err != nil {
			t.Fatalf("download failed: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", link, resp.StatusCode)
		}
		if !bytes.Contains(body, []byte(sampleRecognizedText)) {
			t.Fatalf("artifact %s missing recognized text: %s", link, body)
		}
	}
}

func TestServer_UploadRequiresAPIKeyWhenConfigured(t *testing.T) {
	ts, _ := newTestApp(t, "secret")

	resp, err := http.DefaultClient.Do(newPDFRequest(t, ts.URL+"/upload", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.StatusCode)
	}

	req := newPDFRequest(t, ts.URL+"/upload", map[string]string{"lang": "eng"})
	req.Header.Set("x-api-key", "secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", resp.StatusCode)
	}
}

func TestServer_IndexPage(t *testing.T) {
	ts, _ := newTestApp(t, "")

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`id="dropArea"`)) {
		t.Fatal("index page missing drop area")
	}
}

func newPDFRequest(t *testing.T, url string, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	part, err := writer.CreateFormFile("file", "sample.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 test body")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
