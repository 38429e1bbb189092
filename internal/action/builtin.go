package action

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Runner executes a host command. Swappable so tests don't reboot the build
// machine.
type Runner func(ctx context.Context, name string, arg ...string) error

func execRunner(ctx context.Context, name string, arg ...string) error {
	return exec.CommandContext(ctx, name, arg...).Run()
}

// BuiltinConfig configures the standard action set.
type BuiltinConfig struct {
	// HostConfigPath is the managed host config file served by the config/*
	// actions. Empty disables them with an error at invocation time.
	HostConfigPath string
	// Run executes host commands for system/reboot and system/halt.
	// Defaults to os/exec.
	Run Runner
	// Now is the clock used for backup names and reported times.
	// Defaults to time.Now.
	Now func() time.Time
}

var processStart = time.Now()

// RegisterBuiltins adds the standard privileged operations to r.
func RegisterBuiltins(r *Registry, cfg BuiltinConfig) {
	if cfg.Run == nil {
		cfg.Run = execRunner
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	r.Register("system/info", systemInfo(cfg))
	r.Register("system/stats", systemStats())
	r.Register("system/reboot", hostShutdown(cfg, "-r"))
	r.Register("system/halt", hostShutdown(cfg, "-h"))
	r.Register("config/get", configGet(cfg))
	r.Register("config/backup", configBackup(cfg))
}

func systemInfo(cfg BuiltinConfig) Func {
	return func(_ context.Context, _ Invocation, e *jx.Encoder) error {
		hostname, err := os.Hostname()
		if err != nil {
			return errors.Wrap(err, "hostname")
		}
		e.ObjStart()
		e.FieldStart("hostname")
		e.Str(hostname)
		e.FieldStart("os")
		e.Str(runtime.GOOS)
		e.FieldStart("arch")
		e.Str(runtime.GOARCH)
		e.FieldStart("pid")
		e.Int(os.Getpid())
		e.FieldStart("server_time")
		e.Str(cfg.Now().UTC().Format(time.RFC3339))
		e.ObjEnd()
		return nil
	}
}

func systemStats() Func {
	return func(_ context.Context, _ Invocation, e *jx.Encoder) error {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		e.ObjStart()
		e.FieldStart("uptime_seconds")
		e.Int64(int64(time.Since(processStart).Seconds()))
		e.FieldStart("goroutines")
		e.Int(runtime.NumGoroutine())
		e.FieldStart("cpus")
		e.Int(runtime.NumCPU())
		e.FieldStart("mem_alloc_bytes")
		e.UInt64(ms.Alloc)
		e.FieldStart("mem_sys_bytes")
		e.UInt64(ms.Sys)
		e.ObjEnd()
		return nil
	}
}

func hostShutdown(cfg BuiltinConfig, mode string) Func {
	return func(ctx context.Context, _ Invocation, e *jx.Encoder) error {
		if err := cfg.Run(ctx, "shutdown", mode, "now"); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		e.ObjStart()
		e.FieldStart("scheduled")
		e.Bool(true)
		e.ObjEnd()
		return nil
	}
}

func configGet(cfg BuiltinConfig) Func {
	return func(_ context.Context, _ Invocation, e *jx.Encoder) error {
		if cfg.HostConfigPath == "" {
			return errors.New("host config path not configured")
		}
		content, err := os.ReadFile(cfg.HostConfigPath)
		if err != nil {
			return errors.Wrap(err, "read host config")
		}
		e.ObjStart()
		e.FieldStart("path")
		e.Str(cfg.HostConfigPath)
		e.FieldStart("content")
		e.Str(string(content))
		e.ObjEnd()
		return nil
	}
}

func configBackup(cfg BuiltinConfig) Func {
	return func(_ context.Context, _ Invocation, e *jx.Encoder) error {
		if cfg.HostConfigPath == "" {
			return errors.New("host config path not configured")
		}
		content, err := os.ReadFile(cfg.HostConfigPath)
		if err != nil {
			return errors.Wrap(err, "read host config")
		}
		backup := cfg.HostConfigPath + "-" + cfg.Now().UTC().Format("20060102T150405") + ".bak"
		if err := os.WriteFile(backup, content, 0o600); err != nil {
			return errors.Wrap(err, "write backup")
		}
		e.ObjStart()
		e.FieldStart("backup")
		e.Str(backup)
		e.ObjEnd()
		return nil
	}
}
