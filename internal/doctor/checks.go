package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/connectors"
	"github.com/patchbaylabs/patchbay/internal/logging"
)

// connectTimeout bounds each connector's validation call.
const connectTimeout = 10 * time.Second

// CheckConfig verifies the configuration loaded and validates.
func (c *Checker) CheckConfig() CheckResult {
	result := CheckResult{
		Name:     "config",
		Required: true,
		Details:  config.GetUserConfigPath(),
	}

	if c.cfgErr != nil {
		result.Status = StatusFail
		result.Message = c.cfgErr.Error()
		return result
	}

	if err := c.cfg.Validate(); err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}

	result.Status = StatusPass
	if config.UserConfigExists() {
		result.Message = "OK"
	} else {
		result.Message = "using defaults (no config file)"
	}
	return result
}

// CheckLogDir verifies the log directory exists and is writable.
func (c *Checker) CheckLogDir() CheckResult {
	dir := logging.DefaultLogDir()
	result := CheckResult{
		Name:     "log_dir",
		Required: true,
		Details:  dir,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create %s: %v", dir, err)
		return result
	}

	testFile := filepath.Join(dir, ".patchbay-doctor-test")
	f, err := os.Create(testFile)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// CheckConnectors reports which connectors are enabled and flags enabled
// names the catalog does not know.
func (c *Checker) CheckConnectors() CheckResult {
	result := CheckResult{
		Name:     "connectors",
		Required: false,
	}

	enabled := c.cfg.EnabledConnectors()
	sort.Strings(enabled)

	var unknown []string
	for _, name := range enabled {
		if _, ok := connectors.Find(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("unknown connector(s) enabled: %s", strings.Join(unknown, ", "))
		result.Details = "known connectors: " + strings.Join(connectors.Names(), ", ")
		return result
	}

	if len(enabled) == 0 {
		result.Status = StatusWarn
		result.Message = "no connectors enabled (run 'patchbay setup')"
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d enabled: %s", len(enabled), strings.Join(enabled, ", "))
	return result
}

// CheckCredentials verifies every enabled connector's required credentials
// resolve from config or environment. One result per enabled connector.
func (c *Checker) CheckCredentials() []CheckResult {
	var results []CheckResult

	for _, f := range connectors.Catalog() {
		cc, ok := c.cfg.Connectors[f.Name]
		if !ok || !cc.Enabled {
			continue
		}
		results = append(results, c.checkConnectorCredentials(f))
	}

	return results
}

func (c *Checker) checkConnectorCredentials(f connectors.Factory) CheckResult {
	result := CheckResult{
		Name:     "credentials:" + f.Name,
		Required: true,
	}

	specs := f.Credentials()
	creds := connectors.ResolveCredentials(c.cfg, f.Name, specs)

	var missing []string
	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if creds[spec.Key] == "" {
			missing = append(missing, fmt.Sprintf("%s (set %s)", spec.Key, spec.EnvVar))
		}
	}

	if len(missing) > 0 {
		result.Status = StatusFail
		result.Message = "missing: " + strings.Join(missing, ", ")
		return result
	}

	result.Status = StatusPass
	if len(specs) == 0 {
		result.Message = "no credentials required"
	} else {
		result.Message = "all credentials set"
	}
	return result
}

// CheckConnectivity builds each enabled connector and validates its
// credentials with one authenticated call. One result per connector in
// catalog order; failures are warnings so flaky networks do not fail
// doctor outright.
func (c *Checker) CheckConnectivity(ctx context.Context) []CheckResult {
	var enabled []connectors.Factory
	for _, f := range connectors.Catalog() {
		cc, ok := c.cfg.Connectors[f.Name]
		if !ok || !cc.Enabled {
			continue
		}
		enabled = append(enabled, f)
	}
	if len(enabled) == 0 {
		return nil
	}

	// Each check waits on an upstream API, so they run in parallel. A plain
	// group (not WithContext) keeps one failing connector from canceling
	// its siblings' in-flight calls.
	results := make([]CheckResult, len(enabled))
	var g errgroup.Group
	for i, f := range enabled {
		i, f := i, f // Capture loop variables
		g.Go(func() error {
			results[i] = c.checkConnectorConnectivity(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Checker) checkConnectorConnectivity(ctx context.Context, f connectors.Factory) CheckResult {
	result := CheckResult{
		Name:     "connectivity:" + f.Name,
		Required: false,
	}

	settings := connector.Settings{
		Credentials: connectors.ResolveCredentials(c.cfg, f.Name, f.Credentials()),
		Logger:      logging.Nop(),
	}

	conn, err := f.New(settings, c.cfg)
	if err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := conn.Validate(ctx); err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}

	result.Status = StatusPass
	result.Message = "authenticated"
	return result
}
