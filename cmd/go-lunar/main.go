package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-lunar/internal/cli"
	"github.com/tartampluch/go-lunar/internal/config"
)

// main delegates to runMain so that deferred calls (closing the log file)
// run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain wires logging and signals around the command tree.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logging is configured by the root command once --debug is parsed.
	var logCloser io.Closer
	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()

	err := cli.Execute(ctx, cli.Options{
		Logging: func(debug, service bool) {
			logCloser = setupLogging(logPolicyFor(debug, service))
			logStartupInfo()
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		slog.Debug(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// logPolicy decides how much one invocation logs and where.
type logPolicy struct {
	level  slog.Level
	source bool
	// file enables the log file in the cache directory. Only the server
	// owns it, so one-shot commands never truncate a running server's log.
	file bool
}

func logPolicyFor(debug, service bool) logPolicy {
	p := logPolicy{level: slog.LevelWarn, source: debug, file: service}
	switch {
	case debug:
		p.level = slog.LevelDebug
	case service:
		p.level = slog.LevelInfo
	}
	return p
}

// setupLogging installs the default slog logger. Records go to stderr, so
// command output on stdout stays machine-readable, and for the server also
// to a log file in the user's cache directory.
func setupLogging(p logPolicy) io.Closer {
	writers := []io.Writer{os.Stderr}
	var logFile *os.File

	if p.file {
		f, err := openLogFile()
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, err)
		}
	}

	opts := &slog.HandlerOptions{
		Level:     p.level,
		AddSource: p.source,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// openLogFile starts a fresh log file. O_TRUNC resets logs on restart to
// prevent indefinite growth; O_APPEND keeps writes at the end if another
// process truncates it anyway.
func openLogFile() (*os.File, error) {
	logPath, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_APPEND|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", config.ErrLogFile, logPath, err)
	}
	return f, nil
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
