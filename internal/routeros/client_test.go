package routeros

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRouter — минимальная имитация REST API RouterOS в памяти.
type fakeRouter struct {
	users   map[string]hotspotUser // ключ — .id
	active  []activeSession
	nextID  int
	fail    bool // 500 на все запросы
	mux     *http.ServeMux
	patches []hotspotUser
}

func newFakeRouter() *fakeRouter {
	f := &fakeRouter{users: map[string]hotspotUser{}, nextID: 1}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/ip/hotspot/active", func(w http.ResponseWriter, r *http.Request) {
		if f.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(f.active)
	})
	mux.HandleFunc("/rest/ip/hotspot/user", func(w http.ResponseWriter, r *http.Request) {
		if f.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		switch r.Method {
		case http.MethodGet:
			name := r.URL.Query().Get("name")
			result := []hotspotUser{}
			for _, u := range f.users {
				if name == "" || u.Name == name {
					result = append(result, u)
				}
			}
			_ = json.NewEncoder(w).Encode(result)
		case http.MethodPut:
			var u hotspotUser
			_ = json.NewDecoder(r.Body).Decode(&u)
			u.ID = "*" + strings.Repeat("1", f.nextID)
			f.nextID++
			f.users[u.ID] = u
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(u)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/rest/ip/hotspot/user/", func(w http.ResponseWriter, r *http.Request) {
		if f.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/rest/ip/hotspot/user/")
		existing, ok := f.users[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPatch:
			var patch hotspotUser
			_ = json.NewDecoder(r.Body).Decode(&patch)
			f.patches = append(f.patches, patch)
			if patch.Disabled != "" {
				existing.Disabled = patch.Disabled
			}
			if patch.Password != "" {
				existing.Password = patch.Password
			}
			f.users[id] = existing
			_ = json.NewEncoder(w).Encode(existing)
		case http.MethodDelete:
			delete(f.users, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	f.mux = mux
	return f
}

func (f *fakeRouter) byName(name string) (hotspotUser, bool) {
	for _, u := range f.users {
		if u.Name == name {
			return u, true
		}
	}
	return hotspotUser{}, false
}

func newTestClient(t *testing.T, f *fakeRouter) (*Client, *httptest.Server) {
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "api", "secret", 2*time.Second), srv
}

func TestClient_ListActive(t *testing.T) {
	f := newFakeRouter()
	f.active = []activeSession{
		{User: "alice", Address: "10.0.0.2", MACAddress: "AA:BB:CC:DD:EE:FF", Uptime: "1h2m", LoginBy: "http-chap"},
	}
	client, _ := newTestClient(t, f)

	sessions, err := client.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "alice", sessions[0].Username)
	assert.Equal(t, "10.0.0.2", sessions[0].IPAddress)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", sessions[0].MACAddress)
	assert.Equal(t, "1h2m", sessions[0].Uptime)
	assert.Equal(t, "http-chap", sessions[0].LoginBy)
}

func TestClient_Bind_CreatesWhenAbsent(t *testing.T) {
	f := newFakeRouter()
	client, _ := newTestClient(t, f)

	err := client.Bind(context.Background(), "alice", "pass123", "daily_1000", "1d")
	require.NoError(t, err)

	u, ok := f.byName("alice")
	require.True(t, ok)
	assert.Equal(t, "daily_1000", u.Profile)
	assert.Equal(t, "1d", u.LimitUptime)
}

func TestClient_Bind_IdempotentWhenPresent(t *testing.T) {
	f := newFakeRouter()
	client, _ := newTestClient(t, f)

	require.NoError(t, client.Bind(context.Background(), "alice", "pass123", "daily_1000", "1d"))
	require.NoError(t, client.Bind(context.Background(), "alice", "pass456", "daily_1000", "1d"))

	// Повторная привязка не создаёт дубликат, а обновляет запись
	count := 0
	for _, u := range f.users {
		if u.Name == "alice" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	u, _ := f.byName("alice")
	assert.Equal(t, "pass456", u.Password)
	assert.Equal(t, "false", u.Disabled)
}

func TestClient_EnableDisable(t *testing.T) {
	f := newFakeRouter()
	client, _ := newTestClient(t, f)
	require.NoError(t, client.Bind(context.Background(), "bob", "pw", "monthly_1000", "30d"))

	require.NoError(t, client.Disable(context.Background(), "bob"))
	u, _ := f.byName("bob")
	assert.Equal(t, "true", u.Disabled)

	require.NoError(t, client.Enable(context.Background(), "bob"))
	u, _ = f.byName("bob")
	assert.Equal(t, "false", u.Disabled)
}

func TestClient_Enable_MissingCredential(t *testing.T) {
	f := newFakeRouter()
	client, _ := newTestClient(t, f)

	err := client.Enable(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrCredentialMissing)
}

func TestClient_DisableRemove_AbsentIsNoop(t *testing.T) {
	f := newFakeRouter()
	client, _ := newTestClient(t, f)

	assert.NoError(t, client.Disable(context.Background(), "ghost"))
	assert.NoError(t, client.Remove(context.Background(), "ghost"))
}

func TestClient_Remove(t *testing.T) {
	f := newFakeRouter()
	client, _ := newTestClient(t, f)
	require.NoError(t, client.Bind(context.Background(), "carol", "pw", "daily_1000", "1d"))

	require.NoError(t, client.Remove(context.Background(), "carol"))
	_, ok := f.byName("carol")
	assert.False(t, ok)
}

func TestClient_ServerError_IsUnavailable(t *testing.T) {
	f := newFakeRouter()
	f.fail = true
	client, _ := newTestClient(t, f)

	_, err := client.ListUsernames(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = client.ListActive(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	err = client.Bind(context.Background(), "alice", "pw", "daily_1000", "1d")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_ConnectionRefused_IsUnavailable(t *testing.T) {
	f := newFakeRouter()
	client, srv := newTestClient(t, f)
	srv.Close()

	_, err := client.ListUsernames(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Timeout_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "api", "secret", 50*time.Millisecond)
	_, err := client.ListActive(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}
