package profile

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mr-tron/base58"

	"github.com/etherealgames/nexuscore/engine/codec"
)

const challenge = "sign-in-to-nexus-12345"

// fakeService is a minimal in-memory profile service for client tests.
type fakeService struct {
	t         *testing.T
	signerPub ed25519.PublicKey

	authCalls int
	putCalls  int
	rejectPut int // reject this many PUTs with 401 before accepting

	profiles map[string]profileBody
	tokens   map[string]bool
}

func newFakeService(t *testing.T, pub ed25519.PublicKey) *fakeService {
	return &fakeService{
		t:         t,
		signerPub: pub,
		profiles:  map[string]profileBody{},
		tokens:    map[string]bool{},
	}
}

func (f *fakeService) issueToken() string {
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		f.t.Fatal(err)
	}
	f.tokens[tok] = true
	return tok
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/auth/request", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": challenge})
	})

	mux.HandleFunc("POST /v1/auth/confirm", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Wallet, Signature string }
		json.NewDecoder(r.Body).Decode(&req)
		sig, err := base58.Decode(req.Signature)
		if err != nil || !ed25519.Verify(f.signerPub, []byte(challenge), sig) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.authCalls++
		json.NewEncoder(w).Encode(map[string]string{"accessToken": f.issueToken()})
	})

	mux.HandleFunc("PUT /v1/profiles/{wallet}", func(w http.ResponseWriter, r *http.Request) {
		f.putCalls++
		if f.rejectPut > 0 {
			f.rejectPut--
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body profileBody
		json.NewDecoder(r.Body).Decode(&body)
		f.profiles[r.PathValue("wallet")] = body
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /v1/profiles/{wallet}", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := f.profiles[r.PathValue("wallet")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(body)
	})

	mux.HandleFunc("POST /v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body profileBody
		json.NewDecoder(r.Body).Decode(&body)
		f.profiles["__created__"] = body
		w.WriteHeader(http.StatusCreated)
	})

	return mux
}

func (f *fakeService) authorized(r *http.Request) bool {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return f.tokens[tok]
}

func newTestClient(t *testing.T) (*Client, *fakeService, *Signer) {
	t.Helper()
	signer, err := GenerateSigner()
	if err != nil {
		t.Fatal(err)
	}
	svc := newFakeService(t, signer.priv.Public().(ed25519.PublicKey))
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, signer), svc, signer
}

func TestSave_AuthFlowAndPayload(t *testing.T) {
	client, svc, signer := newTestClient(t)
	wallet := signer.Address()

	pairs := []codec.KV{{Key: "level", Value: "3"}, {Key: "wallet", Value: wallet}}
	if err := client.Save(context.Background(), wallet, pairs); err != nil {
		t.Fatal(err)
	}

	if svc.authCalls != 1 {
		t.Errorf("auth calls = %d, want 1", svc.authCalls)
	}
	stored := svc.profiles[wallet]
	if len(stored.CustomData) != 2 || stored.CustomData[0] != [2]string{"level", "3"} {
		t.Errorf("stored payload = %+v", stored.CustomData)
	}

	// A second save reuses the cached token.
	if err := client.Save(context.Background(), wallet, pairs); err != nil {
		t.Fatal(err)
	}
	if svc.authCalls != 1 {
		t.Errorf("auth calls after reuse = %d, want 1", svc.authCalls)
	}
}

func TestSave_ReauthenticatesOn401(t *testing.T) {
	client, svc, signer := newTestClient(t)
	svc.rejectPut = 1

	err := client.Save(context.Background(), signer.Address(), []codec.KV{{Key: "level", Value: "1"}})
	if err != nil {
		t.Fatalf("save with one 401 failed: %v", err)
	}
	if svc.putCalls != 2 {
		t.Errorf("put calls = %d, want retry after re-auth", svc.putCalls)
	}
	if svc.authCalls != 2 {
		t.Errorf("auth calls = %d, want 2", svc.authCalls)
	}
}

func TestSave_PersistentUnauthorized(t *testing.T) {
	client, svc, signer := newTestClient(t)
	svc.rejectPut = 10

	err := client.Save(context.Background(), signer.Address(), []codec.KV{{Key: "level", Value: "1"}})
	if !errors.Is(err, ErrAuthRequired) {
		t.Errorf("err = %v, want ErrAuthRequired", err)
	}
	if svc.putCalls != 2 {
		t.Errorf("put calls = %d, want exactly one retry", svc.putCalls)
	}
}

func TestSave_RemoteRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/auth") {
			if strings.HasSuffix(r.URL.Path, "request") {
				json.NewEncoder(w).Encode(map[string]string{"message": "m"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"accessToken": "tok"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	signer, _ := GenerateSigner()
	client := NewClient(srv.URL, 5*time.Second, signer)

	err := client.Save(context.Background(), signer.Address(), nil)
	if !errors.Is(err, ErrRemoteRejected) {
		t.Errorf("err = %v, want ErrRemoteRejected", err)
	}
}

func TestLoad_MissingProfileIsNil(t *testing.T) {
	client, _, signer := newTestClient(t)

	snap, err := client.Load(context.Background(), signer.Address())
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Errorf("snapshot = %+v, want nil for absent profile", snap)
	}
}

func TestLoad_ParsesCustomData(t *testing.T) {
	client, svc, signer := newTestClient(t)
	wallet := signer.Address()
	svc.profiles[wallet] = profileBody{
		Name:       "Adventurer-abcd",
		CustomData: [][2]string{{"level", "3"}, {"currentRealm", "dark-forest"}},
	}

	snap, err := client.Load(context.Background(), wallet)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "Adventurer-abcd" {
		t.Errorf("name = %s", snap.Name)
	}
	if snap.Data["level"] != "3" || snap.Data["currentRealm"] != "dark-forest" {
		t.Errorf("data = %+v", snap.Data)
	}
}

func TestBootstrap_CreatesNamedProfile(t *testing.T) {
	client, svc, signer := newTestClient(t)
	wallet := signer.Address()

	snap, err := client.Bootstrap(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	wantName := "Adventurer-" + wallet[:4]
	if snap.Name != wantName {
		t.Errorf("name = %s, want %s", snap.Name, wantName)
	}
	if created := svc.profiles["__created__"]; created.Name != wantName {
		t.Errorf("created profile = %+v", created)
	}
}

func TestBootstrap_ReturnsExistingProfile(t *testing.T) {
	client, svc, signer := newTestClient(t)
	wallet := signer.Address()
	svc.profiles[wallet] = profileBody{Name: "Veteran", CustomData: [][2]string{{"level", "9"}}}

	snap, err := client.Bootstrap(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "Veteran" || snap.Data["level"] != "9" {
		t.Errorf("snapshot = %+v", snap)
	}
	if _, created := svc.profiles["__created__"]; created {
		t.Error("bootstrap re-created an existing profile")
	}
}
