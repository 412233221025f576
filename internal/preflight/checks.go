package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"mikanto/internal/config"
	"mikanto/internal/remotesync"
	"mikanto/internal/services/aria2"
	"mikanto/internal/services/llm"
	"mikanto/internal/subscriptions"
)

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeTimeout(err, "LLM API")}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckAria2 connects to the JSON-RPC endpoint and reports its download
// directory.
func CheckAria2(ctx context.Context, settings config.Aria2) Result {
	const name = "aria2"
	endpoint := settings.Endpoint()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := aria2.Connect(checkCtx, aria2.Config{Endpoint: endpoint, Secret: settings.Secret})
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (%s)", endpoint, summarizeTimeout(err, "aria2"))}
	}
	defer client.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (dir %s)", endpoint, client.BaseDir())}
}

// CheckSyncTarget parses the sync target and opens a TCP connection to it.
// Credentials are not exercised.
func CheckSyncTarget(ctx context.Context, sync config.Sync) Result {
	const name = "Remote sync"
	if sync.Target == "" {
		return Result{Name: name, Passed: true, Skipped: true, Detail: "Disabled"}
	}
	target, err := remotesync.ParseTarget(sync.Target)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	timeout := time.Duration(sync.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", target.Host)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", target, summarizeTimeout(err, "sync host"))}
	}
	_ = conn.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", target)}
}

// CheckSubscriptions loads the subscription file. The parsed list is
// returned on success so callers can reuse its aria2 block.
func CheckSubscriptions(path string) (Result, *subscriptions.List) {
	const name = "Subscriptions"
	list, err := subscriptions.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}, nil
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d enabled of %d)", path, list.EnabledCount(), len(list.Mikan)),
	}, list
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeTimeout produces a readable summary for timed-out checks.
func summarizeTimeout(err error, what string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("timed out (%s unresponsive)", what)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("timed out (%s unreachable)", what)
	}
	return err.Error()
}
