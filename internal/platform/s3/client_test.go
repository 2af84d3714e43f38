package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	client := s3.New(s3.Options{
		Region:       "eu-central-1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient: &http.Client{
			Transport: &http.Transport{},
		},
	})

	return &Client{s3: client, region: "eu-central-1"}, server
}

// xmlResponse is a helper to write S3-style XML responses.
func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "custom endpoint",
			cfg: Config{
				Endpoint:  "https://fsn1.your-objectstorage.com",
				Region:    "fsn1",
				AccessKey: "test-access-key",
				SecretKey: "test-secret-key",
			},
		},
		{
			name: "default endpoint with path style",
			cfg: Config{
				Region:    "eu-central-1",
				AccessKey: "test-access-key",
				SecretKey: "test-secret-key",
				PathStyle: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("expected non-nil client")
			}
			if client.region != tt.cfg.Region {
				t.Errorf("expected region %s, got %s", tt.cfg.Region, client.region)
			}
		})
	}
}

func TestCreateBucket_AlreadyOwnedByYou(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 409, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>BucketAlreadyOwnedByYou</Code>
  <Message>Your previous request to create the named bucket succeeded and you already own it.</Message>
  <BucketName>craftd-backups</BucketName>
</Error>`)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.CreateBucket(context.Background(), "craftd-backups")
	if err != nil {
		t.Fatalf("expected nil error for already owned bucket, got: %v", err)
	}
}

func TestCreateBucket_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 403, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>AccessDenied</Code>
  <Message>Access Denied</Message>
</Error>`)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.CreateBucket(context.Background(), "craftd-backups")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to create bucket craftd-backups") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestBucketExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		body       string
		want       bool
		wantErr    bool
	}{
		{
			name:       "exists",
			statusCode: 200,
			want:       true,
		},
		{
			name:       "not found",
			statusCode: 404,
			body: `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>NotFound</Code>
  <Message>Not Found</Message>
</Error>`,
			want: false,
		},
		{
			name:       "access denied",
			statusCode: 403,
			body: `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>AccessDenied</Code>
  <Message>Access Denied</Message>
</Error>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				xmlResponse(w, tt.statusCode, tt.body)
			})

			client, server := testClient(t, handler)
			defer server.Close()

			exists, err := client.BucketExists(context.Background(), "craftd-backups")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if exists != tt.want {
				t.Errorf("expected exists=%v, got %v", tt.want, exists)
			}
		})
	}
}

func TestPutObject_Success(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	var capturedPath string
	var mu sync.Mutex

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "PUT" {
			mu.Lock()
			body, _ := io.ReadAll(r.Body)
			capturedBody = body
			capturedPath = r.URL.Path
			mu.Unlock()
			w.WriteHeader(200)
			return
		}
		w.WriteHeader(404)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	data := []byte(`{"players":{}}`)
	err := client.PutObject(context.Background(), "craftd-backups", "craftd/20240101T000000Z/players.json", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !bytes.Equal(capturedBody, data) {
		t.Errorf("expected body %q, got %q", data, capturedBody)
	}
	if !strings.Contains(capturedPath, "craftd/20240101T000000Z/players.json") {
		t.Errorf("unexpected request path %q", capturedPath)
	}
}

func TestPutObject_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 500, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>InternalError</Code>
  <Message>Internal Error</Message>
</Error>`)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.PutObject(context.Background(), "craftd-backups", "players.json", []byte("data"))
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to put object players.json in bucket craftd-backups") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestListObjects_Success(t *testing.T) {
	t.Parallel()

	var capturedQuery string
	var mu sync.Mutex

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" {
			mu.Lock()
			capturedQuery = r.URL.RawQuery
			mu.Unlock()
			xmlResponse(w, 200, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>craftd-backups</Name>
  <Prefix>craftd/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>craftd/20240101T000000Z/players.json</Key>
    <Size>100</Size>
  </Contents>
  <Contents>
    <Key>craftd/20240102T000000Z/players.json</Key>
    <Size>120</Size>
  </Contents>
</ListBucketResult>`)
			return
		}
		w.WriteHeader(404)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	keys, err := client.ListObjects(context.Background(), "craftd-backups", "craftd/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{
		"craftd/20240101T000000Z/players.json",
		"craftd/20240102T000000Z/players.json",
	}
	if len(keys) != len(expected) {
		t.Fatalf("expected %d keys, got %d", len(expected), len(keys))
	}
	for i, key := range expected {
		if keys[i] != key {
			t.Errorf("expected key %q at index %d, got %q", key, i, keys[i])
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(capturedQuery, "prefix=craftd") {
		t.Errorf("expected prefix in query, got %q", capturedQuery)
	}
}

func TestListObjects_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 500, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>InternalError</Code>
  <Message>Internal Error</Message>
</Error>`)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	_, err := client.ListObjects(context.Background(), "craftd-backups", "")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to list objects in bucket craftd-backups") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestDeleteObject(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "DELETE" {
			w.WriteHeader(204)
			return
		}
		w.WriteHeader(404)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.DeleteObject(context.Background(), "craftd-backups", "craftd/20240101T000000Z/players.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteObject_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 500, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>InternalError</Code>
  <Message>Internal Error</Message>
</Error>`)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.DeleteObject(context.Background(), "craftd-backups", "players.json")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to delete object players.json from bucket craftd-backups") {
		t.Errorf("unexpected error message: %v", err)
	}
}
