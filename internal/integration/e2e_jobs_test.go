//go:build e2e
// +build e2e

package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	buildTimeout = 3 * time.Minute
	runTimeout   = 1 * time.Minute
	nbpDate      = "2006-01-02"
)

func TestE2E_NBPRates_FirstRunAndRerun(t *testing.T) {
	bin := buildCommand(t, "nbp-rates")
	nbp := newFakeNBP()
	srv := httptest.NewServer(nbp)
	defer srv.Close()
	out := t.TempDir()

	env := jobEnv(srv.URL, out)
	if code := runJob(t, bin, env); code != 0 {
		t.Fatalf("first run: exit %d, want 0", code)
	}
	if _, err := os.Stat(filepath.Join(out, "nbp_rates.parquet")); err != nil {
		t.Fatalf("rate table not written: %v", err)
	}

	calls := nbp.count()
	if code := runJob(t, bin, env); code != 0 {
		t.Fatalf("rerun: exit %d, want 0", code)
	}
	if nbp.count() != calls {
		t.Fatalf("rerun issued %d requests, want none", nbp.count()-calls)
	}
}

func TestE2E_NBPRates_PartialFailure(t *testing.T) {
	bin := buildCommand(t, "nbp-rates")
	nbp := newFakeNBP()
	nbp.failCode = "GBP"
	srv := httptest.NewServer(nbp)
	defer srv.Close()
	out := t.TempDir()

	if code := runJob(t, bin, jobEnv(srv.URL, out)); code != 2 {
		t.Fatalf("exit %d, want 2", code)
	}
	if _, err := os.Stat(filepath.Join(out, "nbp_rates.parquet")); err != nil {
		t.Fatalf("successful chunks were not persisted: %v", err)
	}
}

func TestE2E_NBPRates_UnwritableOutput(t *testing.T) {
	bin := buildCommand(t, "nbp-rates")
	srv := httptest.NewServer(newFakeNBP())
	defer srv.Close()
	out := t.TempDir()
	// a directory squatting on the table path makes the final rename fail
	if err := os.MkdirAll(filepath.Join(out, "nbp_rates.parquet", "x"), 0o755); err != nil {
		t.Fatal(err)
	}
	if code := runJob(t, bin, jobEnv(srv.URL, out)); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
}

// fakeNBP answers every rates request with one mid per calendar day.
type fakeNBP struct {
	mu       sync.Mutex
	calls    int
	failCode string
}

func newFakeNBP() *fakeNBP { return &fakeNBP{} }

func (f *fakeNBP) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeNBP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	// /api/exchangerates/rates/{table}/{code}/{start}/{end}/
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 7 {
		http.NotFound(w, r)
		return
	}
	code := parts[4]
	if code == f.failCode {
		http.Error(w, "upstream down", http.StatusInternalServerError)
		return
	}
	start, err1 := time.Parse(nbpDate, parts[5])
	end, err2 := time.Parse(nbpDate, parts[6])
	if err := errors.Join(err1, err2); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var rates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rates = append(rates, fmt.Sprintf(`{"no":"e2e","effectiveDate":%q,"mid":4.1}`, d.Format(nbpDate)))
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"table":"A","code":%q,"rates":[%s]}`, code, strings.Join(rates, ","))
}

func jobEnv(baseURL, outDir string) []string {
	start := time.Now().UTC().AddDate(0, 0, -20).Format(nbpDate)
	return append(os.Environ(),
		"CONFIG_FILE=",
		"LOG_LEVEL=warn",
		"STORAGE=parquet",
		"RUN_TIMEZONE=UTC",
		"OUTPUT_DIR="+outDir,
		"NBP_API_BASE="+baseURL,
		"NBP_START_DATE="+start,
		"NBP_CURRENCIES=EUR,USD,GBP",
		"NBP_CHUNK_DAYS=7",
	)
}

func runJob(t *testing.T, bin string, env []string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, bin)
	cmd.Env = env
	cmd.Dir = t.TempDir()
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		t.Logf("%s exited %d:\n%s", filepath.Base(bin), exitErr.ExitCode(), out)
		return exitErr.ExitCode()
	default:
		t.Fatalf("run %s: %v\n%s", bin, err, out)
		return -1
	}
}

func buildCommand(t *testing.T, name string) string {
	t.Helper()
	if os.Getenv("E2E") != "1" {
		t.Skip("set E2E=1 to build and run the job binaries")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not on PATH")
	}
	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()
	bin := filepath.Join(t.TempDir(), name)
	cmd := exec.CommandContext(ctx, goBin, "build", "-o", bin, "./cmd/"+name)
	cmd.Dir = repoPath(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("go build %s failed: %v\n%s", name, err, out)
	}
	return bin
}

func repoPath(t *testing.T, parts ...string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to determine caller")
	}
	// internal/integration -> internal -> repo root
	root := filepath.Dir(filepath.Dir(filepath.Dir(file)))
	return filepath.Join(root, filepath.Join(parts...))
}
