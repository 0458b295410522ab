package commands

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrEthical07/goAuthClient/internal/stubserver"
	"github.com/MrEthical07/goAuthClient/password"
)

func startStub(t *testing.T) string {
	t.Helper()
	d, err := password.NewDeriver(password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("deriver: %v", err)
	}
	stub, err := stubserver.New(stubserver.Config{Secret: []byte("cli-test"), Deriver: d})
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	if err := stub.AddAccount("bob", "longenough", "ADMIN"); err != nil {
		t.Fatalf("add account: %v", err)
	}
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	url := startStub(t)
	common := []string{"--base-url", url, "--store", "file", "--store-dir", t.TempDir(), "--passphrase", "secret"}

	out, err := run(t, append(common, "login", "-u", "bob", "--password", "longenough")...)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as bob") || !strings.Contains(out, "ADMIN") {
		t.Fatalf("unexpected login output:\n%s", out)
	}

	_, err = run(t, append(common, "whoami")...)
	if err == nil || !strings.Contains(err.Error(), "cannot list accounts") {
		t.Fatalf("file store must refuse listing, got %v", err)
	}

	out, err = run(t, append(common, "whoami", "-u", "bob")...)
	if err != nil {
		t.Fatalf("whoami bob: %v", err)
	}
	if !strings.Contains(out, "Token type: Bearer") || !strings.Contains(out, "Expires in:") {
		t.Fatalf("unexpected whoami output:\n%s", out)
	}

	if _, err := run(t, append(common, "logout", "-u", "bob")...); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := run(t, append(common, "whoami", "-u", "bob")...); err == nil {
		t.Fatal("expected whoami to fail after logout")
	}
}

func TestLoginReportsOutcomeErrors(t *testing.T) {
	url := startStub(t)
	common := []string{"--base-url", url, "--store", "memory"}

	_, err := run(t, append(common, "login", "-u", "bob", "--password", "short")...)
	if err == nil || !strings.Contains(err.Error(), "too short") {
		t.Fatalf("expected local validation error, got %v", err)
	}

	_, err = run(t, append(common, "login", "-u", "bob", "--password", "wrongpassword")...)
	if err == nil || !strings.Contains(err.Error(), "Wrong password") {
		t.Fatalf("expected server field error, got %v", err)
	}

	_, err = run(t, append(common, "signup", "-u", "bob", "--password", "longenough")...)
	if err == nil || !strings.Contains(err.Error(), "taken") {
		t.Fatalf("expected taken, got %v", err)
	}
}

func TestLoginUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, err := run(t, "--base-url", url, "--store", "memory", "login", "-u", "bob", "--password", "longenough")
	if err == nil || !strings.Contains(err.Error(), "not responding") {
		t.Fatalf("expected unreachable notification, got %v", err)
	}
}

func TestWhoamiListsRedisAccounts(t *testing.T) {
	url := startStub(t)
	mr := miniredis.RunT(t)
	common := []string{"--base-url", url, "--store", "redis", "--redis-addr", mr.Addr()}

	if _, err := run(t, append(common, "login", "-u", "bob", "--password", "longenough")...); err != nil {
		t.Fatalf("login: %v", err)
	}
	out, err := run(t, append(common, "whoami")...)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if strings.TrimSpace(out) != "bob" {
		t.Fatalf("expected bob listed, got:\n%s", out)
	}
}

func TestUnknownStore(t *testing.T) {
	_, err := run(t, "--store", "tape", "whoami")
	if err == nil || !strings.Contains(err.Error(), "unknown --store") {
		t.Fatalf("expected unknown store error, got %v", err)
	}
}

func TestLoadtestInProcess(t *testing.T) {
	out, err := run(t, "loadtest", "--accounts", "3", "--ops", "12", "--concurrency", "3")
	if err != nil {
		t.Fatalf("loadtest: %v", err)
	}
	if !strings.Contains(out, "login: ops=12 failures=0") {
		t.Fatalf("unexpected loadtest output:\n%s", out)
	}
	if !strings.Contains(out, "goauth_client_attempt_succeeded_total 12") {
		t.Fatalf("expected success counter, got:\n%s", out)
	}
}

func TestParseAccount(t *testing.T) {
	user, pw, roles, err := parseAccount("bob:longenough:ADMIN,USER")
	if err != nil || user != "bob" || pw != "longenough" || len(roles) != 2 {
		t.Fatalf("unexpected parse %q %q %v %v", user, pw, roles, err)
	}
	if _, _, roles, err := parseAccount("carol:pw"); err != nil || roles != nil {
		t.Fatalf("roles must be optional, got %v %v", roles, err)
	}
	if _, _, _, err := parseAccount("nopassword"); err == nil {
		t.Fatal("expected error for missing password")
	}
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(samples, 50); got != 5 {
		t.Fatalf("p50: expected 5, got %d", got)
	}
	if got := percentile(samples, 100); got != 10 {
		t.Fatalf("p100: expected 10, got %d", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("empty: expected 0, got %d", got)
	}
}
