package archive

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Exists(t *testing.T) {
	var gotMethod, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/details/present":
			w.WriteHeader(http.StatusOK)
		case "/details/moved":
			http.Redirect(w, r, "/details/present", http.StatusFound)
		case "/details/broken":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "salli-test")

	tests := []struct {
		name    string
		path    string
		want    bool
		wantErr bool
	}{
		{"present", "/details/present", true, false},
		{"redirect to present", "/details/moved", true, false},
		{"absent", "/details/missing", false, false},
		{"server error", "/details/broken", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Exists(srv.URL + tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Exists() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
			if gotMethod != http.MethodHead {
				t.Errorf("method = %s, want HEAD", gotMethod)
			}
			if gotAgent != "salli-test" {
				t.Errorf("User-Agent = %q", gotAgent)
			}
		})
	}
}

func TestClient_Exists_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(50*time.Millisecond, "")
	if _, err := c.Exists(srv.URL + "/details/slow"); err == nil {
		t.Error("Exists() expected timeout error")
	}
}

func TestClient_Exists_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(time.Second, "")
	if _, err := c.Exists(url + "/details/x"); err == nil {
		t.Error("Exists() expected error for closed server")
	}
}
